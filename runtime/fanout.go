package runtime

import (
	"chat-hub/domain"
	"context"
	"log/slog"
	"time"
)

// Fanout pushes notifications to named users.
//
// It is best-effort: a name without a live session is skipped,
// and a failing endpoint only costs a warning. It never blocks the caller
// for longer than deliveryTimeout per endpoint.
type Fanout struct {
	registry        *Registry
	log             *slog.Logger
	deliveryTimeout time.Duration
}

const defaultDeliveryTimeout = 100 * time.Millisecond

func NewFanout(registry *Registry, log *slog.Logger, deliveryTimeout time.Duration) *Fanout {
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}
	return &Fanout{registry: registry, log: log, deliveryTimeout: deliveryTimeout}
}

// Deliver reports whether the notification was handed to a live endpoint.
func (f *Fanout) Deliver(ctx context.Context, name string, n domain.Notification) bool {
	endpoint, err := f.registry.Lookup(name)
	if err != nil {
		f.log.Debug("Skipping absent recipient", "name", name)
		return false
	}
	deliveryCtx, cancel := context.WithTimeout(ctx, f.deliveryTimeout)
	defer cancel()
	if err := endpoint.Deliver(deliveryCtx, n); err != nil {
		f.log.Warn("Notification dropped", "name", name, "endpoint", endpoint.ID(), "error", err)
		return false
	}
	return true
}

// Broadcast delivers n to every name except one and returns how many endpoints accepted it.
func (f *Fanout) Broadcast(ctx context.Context, names []string, except string, n domain.Notification) int {
	delivered := 0
	for _, name := range names {
		if name == except {
			continue
		}
		if f.Deliver(ctx, name, n) {
			delivered++
		}
	}
	return delivered
}
