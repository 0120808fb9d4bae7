// Package domain contains core concepts of the chat system.
// This file defines the Group entity and its membership rules.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-hub/errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type GroupState int

const (
	GroupStateActive GroupState = iota
	GroupStateDisbanded
)

type Set map[string]struct{}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the set content in lexicographic order.
func (s Set) Sorted() []string {
	names := lo.Keys(s)
	sort.Strings(names)
	return names
}

// Group owns its membership. Invariants kept by every method:
// the admin is always a member, and members and pending invites never overlap.
type Group struct {
	Name           string
	Admin          string
	CreatedAt      time.Time
	key            ConversationKey
	state          GroupState
	members        Set
	pendingInvites Set
}

func NewGroup(name, admin string, at time.Time) *Group {
	return &Group{
		Name:           name,
		Admin:          admin,
		CreatedAt:      at,
		key:            GroupKey(name, uuid.NewString()),
		state:          GroupStateActive,
		members:        Set{admin: {}},
		pendingInvites: make(Set),
	}
}

// Key is the conversation key of this group's history.
func (g *Group) Key() ConversationKey { return g.key }

func (g *Group) State() GroupState { return g.state }

func (g *Group) IsActive() bool { return g.state == GroupStateActive }

func (g *Group) IsMember(username string) bool { return g.members.Has(username) }

func (g *Group) HasPendingInvite(username string) bool { return g.pendingInvites.Has(username) }

func (g *Group) MemberCount() int { return len(g.members) }

func (g *Group) Members() []string { return g.members.Sorted() }

func (g *Group) PendingInvites() []string { return g.pendingInvites.Sorted() }

// Invite records a pending invitation. The inviter must be a member.
func (g *Group) Invite(inviter, invitee string) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if !g.members.Has(inviter) {
		return fmt.Errorf("%w: %s is not in %s", errors.ErrNotMember, inviter, g.Name)
	}
	if g.members.Has(invitee) {
		return fmt.Errorf("%w: %s is already in %s", errors.ErrAlreadyMember, invitee, g.Name)
	}
	g.pendingInvites[invitee] = struct{}{}
	return nil
}

// Join moves username from the pending invites to the members.
// Joining again as a member is accepted and reports joined=false.
func (g *Group) Join(username string) (joined bool, err error) {
	if err := g.checkActive(); err != nil {
		return false, err
	}
	if g.members.Has(username) {
		return false, nil
	}
	if !g.pendingInvites.Has(username) {
		return false, fmt.Errorf("%w: %s", errors.ErrNoPendingInvite, g.Name)
	}
	delete(g.pendingInvites, username)
	g.members[username] = struct{}{}
	return true, nil
}

func (g *Group) Leave(username string) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if !g.members.Has(username) {
		return fmt.Errorf("%w: %s is not in %s", errors.ErrNotMember, username, g.Name)
	}
	if username == g.Admin {
		return fmt.Errorf("%w: %s", errors.ErrAdminCannotLeave, g.Name)
	}
	delete(g.members, username)
	return nil
}

// Disband is the only transition to the terminal state.
func (g *Group) Disband(requester string) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if requester != g.Admin {
		return fmt.Errorf("%w: %s is not the admin of %s", errors.ErrNotAdmin, requester, g.Name)
	}
	g.state = GroupStateDisbanded
	return nil
}

func (g *Group) View() GroupView {
	return GroupView{
		Name:           g.Name,
		Admin:          g.Admin,
		Members:        g.Members(),
		PendingInvites: g.PendingInvites(),
		MemberCount:    g.MemberCount(),
		CreatedAt:      g.CreatedAt,
	}
}

func (g *Group) Summary(username string) GroupSummary {
	return GroupSummary{
		Name:        g.Name,
		MemberCount: g.MemberCount(),
		IsMember:    g.IsMember(username),
		HasInvite:   g.HasPendingInvite(username),
	}
}

func (g *Group) checkActive() error {
	if g.state != GroupStateActive {
		return fmt.Errorf("%w: %s", errors.ErrGroupNotFound, g.Name)
	}
	return nil
}

// GroupView is a detached copy of a group, safe to hand out of the coordinator.
type GroupView struct {
	Name           string
	Admin          string
	Members        []string
	PendingInvites []string
	MemberCount    int
	CreatedAt      time.Time
}

// GroupSummary is one line of a group listing.
type GroupSummary struct {
	Name        string
	MemberCount int
	IsMember    bool
	HasInvite   bool
}
