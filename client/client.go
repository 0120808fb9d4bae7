// Package client is a Go client for the chat hub gRPC service.
// Every call is a request on a single Session stream, correlated by request id.
package client

import (
	"chat-hub/domain"
	chatgrpc "chat-hub/grpc"
	"chat-hub/protocol"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrClosed is returned by calls made after the session ended.
var ErrClosed = stderrors.New("chat session closed")

// ErrUnexpectedResponse means the server answered with another response type than the request expects.
var ErrUnexpectedResponse = stderrors.New("unexpected response")

const defaultNotificationBuffer = 64

type Client struct {
	log    *slog.Logger
	conn   *grpclib.ClientConn
	stream grpclib.ClientStream
	cancel context.CancelFunc

	sendMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan protocol.Envelope
	name    string
	err     error

	notifications chan domain.Notification
	done          chan struct{}
}

// Dial opens the Session stream on target. opts are appended to the insecure JSON defaults.
func Dial(ctx context.Context, log *slog.Logger, target string, opts ...grpclib.DialOption) (*Client, error) {
	dialOpts := append([]grpclib.DialOption{
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(chatgrpc.CodecName)),
	}, opts...)
	conn, err := grpclib.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server at %s: %w", target, err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := conn.NewStream(streamCtx, &chatgrpc.ServiceDesc.Streams[0], chatgrpc.SessionMethod)
	if err != nil {
		cancel()
		_ = conn.Close()
		return nil, fmt.Errorf("could not open session: %w", err)
	}

	c := &Client{
		log:           log,
		conn:          conn,
		stream:        stream,
		cancel:        cancel,
		pending:       make(map[string]chan protocol.Envelope),
		notifications: make(chan domain.Notification, defaultNotificationBuffer),
		done:          make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Notifications are closed when the session ends. Notifications are dropped while the channel is full.
func (c *Client) Notifications() <-chan domain.Notification { return c.notifications }

// Done is closed when the session ends, Err then tells why.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Name is the name registered by this client, empty before Register succeeds.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Close ends the session. The server releases the registered name.
func (c *Client) Close() error {
	c.sendMu.Lock()
	_ = c.stream.CloseSend()
	c.sendMu.Unlock()
	c.cancel()
	<-c.done
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.notifications)
	for {
		var env protocol.Envelope
		if err := c.stream.RecvMsg(&env); err != nil {
			c.fail(err)
			return
		}
		if protocol.IsNotification(env) {
			n, err := protocol.DecodeNotification(env)
			if err != nil {
				c.log.Warn("Undecodable notification", "type", env.Type, "error", err)
				continue
			}
			select {
			case c.notifications <- n:
			default:
				c.log.Warn("Notification dropped, channel full", "type", env.Type)
			}
			continue
		}
		c.mu.Lock()
		reply, ok := c.pending[env.RequestID]
		delete(c.pending, env.RequestID)
		c.mu.Unlock()
		if !ok {
			c.log.Warn("Response without pending request", "type", env.Type, "request_id", env.RequestID)
			continue
		}
		reply <- env
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stderrors.Is(err, io.EOF) {
		err = ErrClosed
	}
	c.err = err
	c.pending = map[string]chan protocol.Envelope{}
}

func (c *Client) call(ctx context.Context, req domain.Request) (domain.Response, error) {
	id := uuid.NewString()
	env, err := protocol.EncodeRequest(id, req)
	if err != nil {
		return nil, err
	}

	reply := make(chan protocol.Envelope, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = reply
	c.mu.Unlock()

	c.sendMu.Lock()
	err = c.stream.SendMsg(&env)
	c.sendMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("send %s: %w", env.Type, err)
	}

	select {
	case resp := <-reply:
		return protocol.DecodeResponse(resp)
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func expect[T domain.Response](resp domain.Response, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResponse, resp)
	}
	return typed, nil
}
