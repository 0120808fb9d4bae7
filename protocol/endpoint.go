package protocol

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"sync"

	"github.com/google/uuid"
)

// Endpoint is the coordinator facing side of one connection.
// Deliver never blocks the coordinator: a full buffer drops the notification.
type Endpoint struct {
	id            domain.EndpointID
	notifications chan domain.Notification
	closed        chan struct{}
	closeOnce     sync.Once
}

func NewEndpoint(bufferSize int) *Endpoint {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Endpoint{
		id:            domain.EndpointID(uuid.NewString()),
		notifications: make(chan domain.Notification, bufferSize),
		closed:        make(chan struct{}),
	}
}

func (e *Endpoint) ID() domain.EndpointID { return e.id }

// Deliver is called by the fanout.
// The connection writer takes it from there.
func (e *Endpoint) Deliver(ctx context.Context, n domain.Notification) error {
	select {
	case <-e.closed:
		return errors.ErrEndpointClosed
	default:
	}
	select {
	case e.notifications <- n:
		return nil
	case <-e.closed:
		return errors.ErrEndpointClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrEndpointFull
	}
}

func (e *Endpoint) Notifications() <-chan domain.Notification { return e.notifications }

// Close makes later deliveries fail with ErrEndpointClosed.
func (e *Endpoint) Close() {
	e.closeOnce.Do(func() { close(e.closed) })
}
