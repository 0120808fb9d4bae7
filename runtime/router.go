package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Router classifies a user message, stores it in the right log and delivers it.
type Router struct {
	registry  *Registry
	groups    *GroupManager
	history   contract.IHistoryRepository
	fanout    *Fanout
	moderator contract.IModerator // optional
	offline   *OfflineQueue       // optional
	log       *slog.Logger
	now       func() time.Time
}

func NewRouter(
	registry *Registry,
	groups *GroupManager,
	history contract.IHistoryRepository,
	fanout *Fanout,
	moderator contract.IModerator,
	offline *OfflineQueue,
	log *slog.Logger,
	now func() time.Time) *Router {
	return &Router{
		registry:  registry,
		groups:    groups,
		history:   history,
		fanout:    fanout,
		moderator: moderator,
		offline:   offline,
		log:       log,
		now:       now,
	}
}

// Send returns the stored message, which is echoed to the sender.
func (r *Router) Send(ctx context.Context, req domain.SendMessage) (domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return domain.Message{}, fmt.Errorf("%w: empty content", errors.ErrInvalidRequest)
	}
	content, lang := r.moderate(req.Sender, req.Content)

	switch req.Kind {
	case domain.DirectKind:
		return r.sendDirect(ctx, req.Sender, req.Recipient, content, lang)
	case domain.GroupKind:
		return r.sendGroup(ctx, req.Sender, req.TargetGroup, content, lang)
	case domain.SystemKind:
		return r.sendSystem(ctx, req.Sender, content, lang)
	default:
		return domain.Message{}, fmt.Errorf("%w: message kind %d", errors.ErrInvalidRequest, req.Kind)
	}
}

func (r *Router) sendDirect(ctx context.Context, sender, recipient, content, lang string) (domain.Message, error) {
	msg := domain.NewDirectMessage(sender, recipient, content, r.now()).WithLang(lang)
	if !r.registry.IsLive(recipient) {
		if r.offline != nil {
			r.offline.Enqueue(recipient, msg)
			r.log.Debug("Direct message queued", "sender", sender, "recipient", recipient)
			return domain.Message{}, fmt.Errorf("%w: %s, message queued", errors.ErrRecipientNotFound, recipient)
		}
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrRecipientNotFound, recipient)
	}
	r.append(domain.DirectKey(sender, recipient), msg)
	r.fanout.Deliver(ctx, recipient, domain.IncomingMessage{Message: msg})
	r.log.Debug("Direct message routed", "sender", sender, "recipient", recipient)
	return msg, nil
}

func (r *Router) sendGroup(ctx context.Context, sender, groupName, content, lang string) (domain.Message, error) {
	g, err := r.groups.Lookup(groupName)
	if err != nil {
		return domain.Message{}, err
	}
	if !g.IsMember(sender) {
		return domain.Message{}, fmt.Errorf("%w: %s is not in %s", errors.ErrNotMember, sender, groupName)
	}
	msg := domain.NewGroupMessage(sender, groupName, content, r.now()).WithLang(lang)
	r.append(g.Key(), msg)
	delivered := r.fanout.Broadcast(ctx, g.Members(), sender, domain.IncomingMessage{Message: msg})
	r.log.Debug("Group message routed", "sender", sender, "group", groupName, "delivered", delivered)
	return msg, nil
}

// sendSystem is a chat-wide announcement. It is not subject to any membership.
// The requester stays the Sender so it is told apart from coordinator announcements.
func (r *Router) sendSystem(ctx context.Context, sender, content, lang string) (domain.Message, error) {
	msg := domain.NewSystemMessage("", content, r.now()).WithLang(lang)
	msg.Sender = sender
	r.append(domain.SystemKey, msg)
	delivered := r.fanout.Broadcast(ctx, r.registry.Names(), sender, domain.IncomingMessage{Message: msg})
	r.log.Debug("System message routed", "sender", sender, "delivered", delivered)
	return msg, nil
}

// Announce broadcasts a coordinator-made system line to every live session but except.
func (r *Router) Announce(ctx context.Context, content, except string) {
	msg := domain.NewSystemMessage("", content, r.now())
	r.append(domain.SystemKey, msg)
	r.fanout.Broadcast(ctx, r.registry.Names(), except, domain.IncomingMessage{Message: msg})
}

// FlushOffline delivers, in order, what was queued for name while it was away.
func (r *Router) FlushOffline(ctx context.Context, name string) int {
	if r.offline == nil {
		return 0
	}
	queued := r.offline.Drain(name)
	for _, msg := range queued {
		r.append(domain.DirectKey(msg.Sender, msg.Recipient), msg)
		r.fanout.Deliver(ctx, name, domain.IncomingMessage{Message: msg})
	}
	if len(queued) > 0 {
		r.log.Info("Offline messages flushed", "name", name, "count", len(queued))
	}
	return len(queued)
}

func (r *Router) moderate(sender, content string) (string, string) {
	if r.moderator == nil {
		return content, ""
	}
	censored, words := r.moderator.Censor(content)
	if len(words) > 0 {
		r.log.Info("Message censored", "sender", sender, "words", len(words))
	}
	return censored, r.moderator.DetectLang(content)
}

func (r *Router) append(key domain.ConversationKey, msg domain.Message) {
	if err := r.history.Append(key, msg); err != nil {
		r.log.Error("Unable to append message", "conversation", key, "error", err)
	}
}
