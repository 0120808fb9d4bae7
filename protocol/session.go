package protocol

import (
	"chat-hub/contract"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Conn is one bidirectional client connection, whatever carries it.
// Recv returns io.EOF when the client leaves cleanly.
// Send is only ever called from a single goroutine.
type Conn interface {
	Recv() (Envelope, error)
	Send(Envelope) error
}

type Options struct {
	BufferSize     int
	RequestTimeout time.Duration
}

const (
	DefaultBufferSize     = 64
	DefaultRequestTimeout = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	return o
}

// Serve pumps conn until the client leaves, the transport fails or ctx is done.
// Requests are handled one at a time in arrival order, responses and notifications
// share a single writer. Whatever name the connection registered is released on return.
func Serve(ctx context.Context, log *slog.Logger, coordinator contract.ICoordinator, conn Conn, opts Options) error {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	endpoint := NewEndpoint(opts.BufferSize)
	defer coordinator.Disconnect(endpoint.ID())
	defer endpoint.Close()
	log = log.With("endpoint", endpoint.ID())
	log.Debug("Session opened")

	inbound := make(chan Envelope)
	readErr := make(chan error, 1)
	go func() {
		for {
			env, err := conn.Recv()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	outbound := make(chan Envelope, opts.BufferSize)
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- write(ctx, log, conn, endpoint, outbound)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Session closed (context canceled)")
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				log.Debug("Session closed by client")
				return nil
			}
			log.Warn("Session read failed", "error", err)
			return err
		case err := <-writeErr:
			log.Warn("Session write failed", "error", err)
			return err
		case env := <-inbound:
			reply := handle(ctx, coordinator, endpoint, env, opts.RequestTimeout)
			select {
			case outbound <- reply:
			case <-ctx.Done():
				return nil
			case err := <-writeErr:
				log.Warn("Session write failed", "error", err)
				return err
			}
		}
	}
}

func handle(ctx context.Context, coordinator contract.ICoordinator, endpoint *Endpoint, env Envelope, timeout time.Duration) Envelope {
	req, err := DecodeRequest(env)
	if err != nil {
		return EncodeError(env.RequestID, err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := coordinator.Submit(ctx, endpoint, req)
	if err != nil {
		return EncodeError(env.RequestID, err)
	}
	reply, err := EncodeResponse(env.RequestID, resp)
	if err != nil {
		return EncodeError(env.RequestID, err)
	}
	return reply
}

func write(ctx context.Context, log *slog.Logger, conn Conn, endpoint *Endpoint, outbound <-chan Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-outbound:
			if err := conn.Send(env); err != nil {
				return err
			}
		case n := <-endpoint.Notifications():
			env, err := EncodeNotification(n)
			if err != nil {
				log.Error("Notification dropped", "error", err)
				continue
			}
			if err := conn.Send(env); err != nil {
				return err
			}
		}
	}
}
