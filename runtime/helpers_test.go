package runtime

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Endpoint is an in-memory endpoint recording every notification.
type Endpoint struct {
	id    domain.EndpointID
	inbox chan domain.Notification
}

func NewEndpoint() *Endpoint {
	return &Endpoint{id: domain.EndpointID(uuid.NewString()), inbox: make(chan domain.Notification, 64)}
}

func (e *Endpoint) ID() domain.EndpointID { return e.id }

func (e *Endpoint) Deliver(_ context.Context, n domain.Notification) error {
	select {
	case e.inbox <- n:
		return nil
	default:
		return errors.ErrEndpointFull
	}
}

func (e *Endpoint) Next(t *testing.T) domain.Notification {
	t.Helper()
	select {
	case n := <-e.inbox:
		return n
	case <-time.After(time.Second):
		require.FailNow(t, "no notification received")
		return nil
	}
}

func (e *Endpoint) Empty(t *testing.T) {
	t.Helper()
	select {
	case n := <-e.inbox:
		require.FailNow(t, "unexpected notification", "%#v", n)
	default:
	}
}

func (e *Endpoint) NextMessage(t *testing.T) domain.Message {
	t.Helper()
	n := e.Next(t)
	incoming, ok := n.(domain.IncomingMessage)
	require.True(t, ok, "expected IncomingMessage, got %#v", n)
	return incoming.Message
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
