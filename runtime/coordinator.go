// Package runtime owns the chat state and the single goroutine allowed to mutate it.
// Registry, GroupManager, Router and the history are never touched concurrently:
// every request is turned into an envelope and processed in mailbox order by Run.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type CoordinatorConfig struct {
	MailboxSize         int
	DeliveryTimeout     time.Duration
	AnnouncePresence    bool
	OfflineQueueEnabled bool
	OfflineQueueLimit   int
	Now                 func() time.Time // defaults to time.Now
}

type result struct {
	resp domain.Response
	err  error
}

// envelope carries either a request (reply is set) or a disconnect (req is nil).
type envelope struct {
	endpoint   contract.Endpoint
	req        domain.Request
	disconnect domain.EndpointID
	reply      chan result
}

type Coordinator struct {
	log      *slog.Logger
	mailbox  chan envelope
	done     chan struct{}
	stopOnce sync.Once
	validate *validator.Validate
	announce bool

	registry *Registry
	groups   *GroupManager
	router   *Router
	history  contract.IHistoryRepository
	index    contract.HistoryIndex // nil when search is disabled
}

// NewCoordinator wires the state owners together. moderator and index may be nil.
func NewCoordinator(
	cfg CoordinatorConfig,
	history contract.IHistoryRepository,
	index contract.HistoryIndex,
	moderator contract.IModerator,
	log *slog.Logger) *Coordinator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	mailboxSize := cfg.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = 1
	}

	registry := NewRegistry()
	fanout := NewFanout(registry, log, cfg.DeliveryTimeout)
	groups := NewGroupManager(history, fanout, log, now)
	var offline *OfflineQueue
	if cfg.OfflineQueueEnabled {
		offline = NewOfflineQueue(cfg.OfflineQueueLimit, log)
	}

	return &Coordinator{
		log:      log,
		mailbox:  make(chan envelope, mailboxSize),
		done:     make(chan struct{}),
		validate: validator.New(),
		announce: cfg.AnnouncePresence,
		registry: registry,
		groups:   groups,
		router:   NewRouter(registry, groups, history, fanout, moderator, offline, log, now),
		history:  history,
		index:    index,
	}
}

// Run processes the mailbox until ctx is done or Stop is called.
// A panic in a handler escapes Run, the supervisor restarts it with the state untouched.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("Coordinator running")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Coordinator stopped (context canceled)")
			return nil
		case <-c.done:
			c.log.Info("Coordinator stopped")
			return nil
		case env := <-c.mailbox:
			c.handle(ctx, env)
		}
	}
}

// Submit validates req, queues it and waits for its response.
// Enqueueing blocks while the mailbox is full, bounded by ctx.
func (c *Coordinator) Submit(ctx context.Context, endpoint contract.Endpoint, req domain.Request) (domain.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", errors.ErrInvalidRequest)
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}

	select {
	case <-c.done:
		return nil, errors.ErrCoordinatorStopped
	default:
	}

	reply := make(chan result, 1)
	select {
	case c.mailbox <- envelope{endpoint: endpoint, req: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, errors.ErrCoordinatorStopped
	}

	select {
	case r := <-reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, errors.ErrCoordinatorStopped
	}
}

// Disconnect queues the release of whatever name endpoint id holds. It has no response.
func (c *Coordinator) Disconnect(id domain.EndpointID) {
	select {
	case c.mailbox <- envelope{disconnect: id}:
	case <-c.done:
	}
}

// MailboxUsage is safe to call from any goroutine.
func (c *Coordinator) MailboxUsage() (length, capacity int) {
	return len(c.mailbox), cap(c.mailbox)
}

// Stop refuses new work. Pending Submit calls return ErrCoordinatorStopped.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Coordinator) handle(ctx context.Context, env envelope) {
	if env.req == nil {
		c.handleDisconnect(ctx, env.disconnect)
		return
	}
	resp, err := c.dispatch(ctx, env.endpoint, env.req)
	if err != nil {
		c.log.Debug("Request rejected", "request", fmt.Sprintf("%T", env.req), "kind", errors.Kind(err), "error", err)
	}
	env.reply <- result{resp: resp, err: err}
}

func (c *Coordinator) handleDisconnect(ctx context.Context, id domain.EndpointID) {
	name, ok := c.registry.Unregister(id)
	if !ok {
		c.log.Debug("Disconnect of unknown endpoint", "endpoint", id)
		return
	}
	c.log.Info("Client disconnected", "name", name, "endpoint", id)
	if c.announce {
		c.router.Announce(ctx, fmt.Sprintf("%s left the chat", name), name)
	}
}
