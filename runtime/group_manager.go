package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"
)

// GroupManager owns every active group.
// A disbanded group is removed from the map, its name becomes free again
// and its history stays behind under the old incarnation key.
type GroupManager struct {
	groups  map[string]*domain.Group
	history contract.IHistoryRepository
	fanout  *Fanout
	log     *slog.Logger
	now     func() time.Time
}

func NewGroupManager(history contract.IHistoryRepository, fanout *Fanout, log *slog.Logger, now func() time.Time) *GroupManager {
	return &GroupManager{
		groups:  make(map[string]*domain.Group),
		history: history,
		fanout:  fanout,
		log:     log,
		now:     now,
	}
}

// Lookup returns the active group named name.
func (m *GroupManager) Lookup(name string) (*domain.Group, error) {
	g, ok := m.groups[name]
	if !ok || !g.IsActive() {
		return nil, fmt.Errorf("%w: %s", errors.ErrGroupNotFound, name)
	}
	return g, nil
}

func (m *GroupManager) Create(ctx context.Context, name, admin string) (domain.GroupView, error) {
	if _, exists := m.groups[name]; exists {
		return domain.GroupView{}, fmt.Errorf("%w: %s", errors.ErrAlreadyExists, name)
	}
	g := domain.NewGroup(name, admin, m.now())
	m.groups[name] = g
	m.record(ctx, g, fmt.Sprintf("%s created the group", admin), admin)
	m.log.Info("Group created", "group", name, "admin", admin)
	return g.View(), nil
}

// Invite returns the confirmation text for the inviter.
// The invitee is notified only when it holds a live session.
func (m *GroupManager) Invite(ctx context.Context, name, inviter, invitee string) (string, error) {
	g, err := m.Lookup(name)
	if err != nil {
		return "", err
	}
	if err := g.Invite(inviter, invitee); err != nil {
		return "", err
	}
	notified := m.fanout.Deliver(ctx, invitee, domain.GroupInvitation{GroupName: name, Inviter: inviter})
	m.log.Debug("Invitation recorded", "group", name, "inviter", inviter, "invitee", invitee, "notified", notified)
	return fmt.Sprintf("Invitation sent to %s for group %s", invitee, name), nil
}

// Join returns the group and its history. A member joining again is a no-op.
func (m *GroupManager) Join(ctx context.Context, name, username string) (domain.GroupView, []domain.Message, error) {
	g, err := m.Lookup(name)
	if err != nil {
		return domain.GroupView{}, nil, err
	}
	joined, err := g.Join(username)
	if err != nil {
		return domain.GroupView{}, nil, err
	}
	if joined {
		m.record(ctx, g, fmt.Sprintf("%s joined the group", username), username)
		m.log.Info("Group joined", "group", name, "name", username)
	}
	return g.View(), m.historyOf(g), nil
}

func (m *GroupManager) Leave(ctx context.Context, name, username string) error {
	g, err := m.Lookup(name)
	if err != nil {
		return err
	}
	if err := g.Leave(username); err != nil {
		return err
	}
	m.record(ctx, g, fmt.Sprintf("%s left the group", username), username)
	m.log.Info("Group left", "group", name, "name", username)
	return nil
}

// Disband tells every other member, then forgets the group.
func (m *GroupManager) Disband(ctx context.Context, name, requester string) error {
	g, err := m.Lookup(name)
	if err != nil {
		return err
	}
	if requester != g.Admin {
		return fmt.Errorf("%w: %s is not the admin of %s", errors.ErrNotAdmin, requester, name)
	}
	members := g.Members()
	m.record(ctx, g, fmt.Sprintf("Group %s was disbanded by %s", name, g.Admin), requester)
	m.fanout.Broadcast(ctx, members, requester, domain.GroupDisbandedNotice{GroupName: name, Admin: g.Admin})
	if err := g.Disband(requester); err != nil {
		return err
	}
	delete(m.groups, name)
	m.log.Info("Group disbanded", "group", name, "admin", requester)
	return nil
}

func (m *GroupManager) Info(name, requester string) (domain.GroupView, []domain.Message, error) {
	g, err := m.Lookup(name)
	if err != nil {
		return domain.GroupView{}, nil, err
	}
	if !g.IsMember(requester) {
		return domain.GroupView{}, nil, fmt.Errorf("%w: %s is not in %s", errors.ErrNotMember, requester, name)
	}
	return g.View(), m.historyOf(g), nil
}

// ListFor returns the groups where username is a member or invited, sorted by name.
func (m *GroupManager) ListFor(username string) []domain.GroupSummary {
	visible := lo.Filter(lo.Values(m.groups), func(g *domain.Group, _ int) bool {
		return g.IsActive() && (g.IsMember(username) || g.HasPendingInvite(username))
	})
	summaries := lo.Map(visible, func(g *domain.Group, _ int) domain.GroupSummary {
		return g.Summary(username)
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// History returns the log of the active group named name, empty when there is none.
func (m *GroupManager) History(name string) []domain.Message {
	g, err := m.Lookup(name)
	if err != nil {
		return []domain.Message{}
	}
	return m.historyOf(g)
}

// KeysFor returns the history keys of every group username belongs to.
func (m *GroupManager) KeysFor(username string) []domain.ConversationKey {
	keys := make([]domain.ConversationKey, 0)
	for _, g := range m.groups {
		if g.IsActive() && g.IsMember(username) {
			keys = append(keys, g.Key())
		}
	}
	return keys
}

// record appends a system line to the group log and pushes it to every member but actor.
func (m *GroupManager) record(ctx context.Context, g *domain.Group, content, actor string) {
	msg := domain.NewSystemMessage(g.Name, content, m.now())
	if err := m.history.Append(g.Key(), msg); err != nil {
		m.log.Error("Unable to append system message", "group", g.Name, "error", err)
	}
	m.fanout.Broadcast(ctx, g.Members(), actor, domain.IncomingMessage{Message: msg})
}

func (m *GroupManager) historyOf(g *domain.Group) []domain.Message {
	messages, err := m.history.Get(g.Key())
	if err != nil {
		m.log.Error("Unable to read group history", "group", g.Name, "error", err)
		return []domain.Message{}
	}
	return messages
}
