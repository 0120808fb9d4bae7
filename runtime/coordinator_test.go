package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/repositories"
	"chat-hub/runtime/workers"
	"chat-hub/search"
	"context"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startCoordinator(t *testing.T, cfg CoordinatorConfig, history contract.IHistoryRepository, index contract.HistoryIndex) *Coordinator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	if cfg.MailboxSize == 0 {
		cfg.MailboxSize = 16
	}
	c := NewCoordinator(cfg, history, index, nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	sup := workers.NewSupervisor(log, 10*time.Millisecond)
	go sup.Add(c).Run(ctx)
	t.Cleanup(func() {
		c.Stop()
		cancel()
	})
	return c
}

func submit(t *testing.T, c *Coordinator, endpoint contract.Endpoint, req domain.Request) (domain.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return c.Submit(ctx, endpoint, req)
}

func register(t *testing.T, c *Coordinator, name string) *Endpoint {
	t.Helper()
	endpoint := NewEndpoint()
	resp, err := submit(t, c, endpoint, domain.Register{Name: name})
	require.NoError(t, err)
	require.Equal(t, domain.RegistrationSuccess{Name: name}, resp)
	return endpoint
}

func TestCoordinator_Direct_Message(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)

	// Given alice and bob are registered
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")

	// When bob sends hi to alice
	resp, err := submit(t, c, bob, domain.SendMessage{Sender: "bob", Recipient: "alice", Content: "hi"})

	// Then alice receives it and the pair history holds one entry
	req.NoError(err)
	echo, ok := resp.(domain.MessageEcho)
	req.True(ok)
	received := alice.NextMessage(t)
	req.Equal("bob", received.Sender)
	req.Equal("hi", received.Content)
	req.Equal(echo.Message, received)

	resp, err = submit(t, c, alice, domain.GetChatHistory{User1: "alice", User2: "bob"})
	req.NoError(err)
	req.Len(resp.(domain.ChatHistory).Messages, 1)

	resp, err = submit(t, c, alice, domain.FindClients{Requester: "alice"})
	req.NoError(err)
	req.Equal(domain.ClientList{Names: []string{"bob"}}, resp)
}

func TestCoordinator_Group_Invitation_And_Join(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")

	// Given alice creates g1
	resp, err := submit(t, c, alice, domain.CreateGroup{GroupName: "g1", Admin: "alice"})
	req.NoError(err)
	req.Equal([]string{"alice"}, resp.(domain.GroupCreated).Group.Members)

	// When alice invites bob
	resp, err = submit(t, c, alice, domain.InviteToGroup{GroupName: "g1", Inviter: "alice", Invitee: "bob"})
	req.NoError(err)
	req.IsType(domain.SystemMessage{}, resp)
	req.Equal(domain.GroupInvitation{GroupName: "g1", Inviter: "alice"}, bob.Next(t))

	// And bob joins
	resp, err = submit(t, c, bob, domain.JoinGroup{GroupName: "g1", Username: "bob"})

	// Then the membership and the log show it exactly once
	req.NoError(err)
	joined := resp.(domain.JoinedGroup)
	req.Equal([]string{"alice", "bob"}, joined.Group.Members)
	count := 0
	for _, m := range joined.History {
		if m.IsSystem() && m.Content == "bob joined the group" {
			count++
		}
	}
	req.Equal(1, count)
	req.Equal("bob joined the group", alice.NextMessage(t).Content)

	resp, err = submit(t, c, bob, domain.GetGroupInfo{GroupName: "g1", Username: "bob"})
	req.NoError(err)
	req.Equal(2, resp.(domain.GroupChatHistory).Group.MemberCount)

	resp, err = submit(t, c, bob, domain.GetChatHistory{GroupName: "g1"})
	req.NoError(err)
	req.Equal(joined.History, resp.(domain.ChatHistory).Messages)
}

func TestCoordinator_Leave(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")
	_, err := submit(t, c, alice, domain.CreateGroup{GroupName: "g1", Admin: "alice"})
	req.NoError(err)

	// Given bob leaves before joining any group
	_, err = submit(t, c, bob, domain.LeaveGroup{GroupName: "g1", Username: "bob"})
	req.ErrorIs(err, errors.ErrNotMember)

	// When bob joins then leaves
	_, err = submit(t, c, alice, domain.InviteToGroup{GroupName: "g1", Inviter: "alice", Invitee: "bob"})
	req.NoError(err)
	_, err = submit(t, c, bob, domain.JoinGroup{GroupName: "g1", Username: "bob"})
	req.NoError(err)
	resp, err := submit(t, c, bob, domain.LeaveGroup{GroupName: "g1", Username: "bob"})
	req.NoError(err)
	req.Equal(domain.LeftGroup{GroupName: "g1"}, resp)

	// Then leaving again fails and bob is no longer a member
	_, err = submit(t, c, bob, domain.LeaveGroup{GroupName: "g1", Username: "bob"})
	req.ErrorIs(err, errors.ErrNotMember)
	resp, err = submit(t, c, alice, domain.GetGroupInfo{GroupName: "g1", Username: "alice"})
	req.NoError(err)
	req.Equal([]string{"alice"}, resp.(domain.GroupChatHistory).Group.Members)
}

func TestCoordinator_Name_Reuse_After_Disconnect(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	first := register(t, c, "carl")

	// Given carl is live, the name is taken
	_, err := submit(t, c, NewEndpoint(), domain.Register{Name: "carl"})
	req.ErrorIs(err, errors.ErrNameTaken)

	// When the first carl disconnects
	c.Disconnect(first.ID())

	// Then a new client can register as carl
	register(t, c, "carl")

	// And an unknown disconnect is a no-op
	c.Disconnect(domain.EndpointID("unknown"))
	_, err = submit(t, c, NewEndpoint(), domain.Register{Name: "carl"})
	req.ErrorIs(err, errors.ErrNameTaken)
}

func TestCoordinator_Disbanded_Group_Is_Gone(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")
	_, err := submit(t, c, alice, domain.CreateGroup{GroupName: "g1", Admin: "alice"})
	req.NoError(err)
	_, err = submit(t, c, alice, domain.InviteToGroup{GroupName: "g1", Inviter: "alice", Invitee: "bob"})
	req.NoError(err)

	resp, err := submit(t, c, alice, domain.DisbandGroup{GroupName: "g1", Username: "alice"})
	req.NoError(err)
	req.Equal(domain.GroupDisbanded{GroupName: "g1"}, resp)

	_, err = submit(t, c, alice, domain.InviteToGroup{GroupName: "g1", Inviter: "alice", Invitee: "bob"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
	_, err = submit(t, c, bob, domain.JoinGroup{GroupName: "g1", Username: "bob"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
	_, err = submit(t, c, alice, domain.LeaveGroup{GroupName: "g1", Username: "alice"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
	_, err = submit(t, c, alice, domain.SendMessage{Sender: "alice", Kind: domain.GroupKind, TargetGroup: "g1", Content: "anyone?"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
	resp, err = submit(t, c, bob, domain.GetGroupList{Username: "bob"})
	req.NoError(err)
	req.Empty(resp.(domain.GroupList).Groups)
}

func TestCoordinator_Presence_Announcements(t *testing.T) {
	req := require.New(t)
	history := repositories.NewMemoryHistoryRepository()
	c := startCoordinator(t, CoordinatorConfig{AnnouncePresence: true}, history, nil)
	alice := register(t, c, "alice")

	// When bob comes and goes
	bob := register(t, c, "bob")
	req.Equal("bob joined the chat", alice.NextMessage(t).Content)
	c.Disconnect(bob.ID())

	// Then alice hears both
	req.Equal("bob left the chat", alice.NextMessage(t).Content)
	bob.Empty(t)

	resp, err := submit(t, c, alice, domain.FindClients{Requester: "alice"})
	req.NoError(err)
	req.Empty(resp.(domain.ClientList).Names)
}

func TestCoordinator_Validation(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	endpoint := NewEndpoint()

	tests := []domain.Request{
		domain.Register{Name: ""},
		domain.Register{Name: "a:b"},
		domain.Register{Name: "   "},
		domain.Register{Name: "bob smith"},
		domain.CreateGroup{GroupName: "  ", Admin: "alice"},
		domain.SendMessage{Sender: "alice", Recipient: " ", Content: "blank recipient"},
		domain.Register{Name: "this-name-is-far-too-long-to-be-accepted"},
		domain.SendMessage{Sender: "alice", Content: "no recipient"},
		domain.SendMessage{Sender: "alice", Kind: domain.GroupKind, Content: "no group"},
		domain.SendMessage{Sender: "alice", Recipient: "bob"},
		domain.GetChatHistory{User1: "alice"},
		domain.SearchHistory{Requester: "alice"},
		nil,
	}
	for _, r := range tests {
		_, err := submit(t, c, endpoint, r)
		req.ErrorIs(err, errors.ErrInvalidRequest, "%#v", r)
	}

	_, err := submit(t, c, nil, domain.Register{Name: "alice"})
	req.ErrorIs(err, errors.ErrInvalidRequest)
}

func TestCoordinator_Search(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := search.NewIndex(log)
	req.NoError(err)
	defer func() { _ = index.Close() }()
	history := repositories.NewIndexedHistoryRepository(repositories.NewMemoryHistoryRepository(), index, log)
	c := startCoordinator(t, CoordinatorConfig{}, history, index)
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")
	carl := register(t, c, "carl")

	_, err = submit(t, c, alice, domain.SendMessage{Sender: "alice", Recipient: "bob", Content: "lunch at noon"})
	req.NoError(err)
	_, err = submit(t, c, carl, domain.SendMessage{Sender: "carl", Recipient: "alice", Content: "lunch tomorrow"})
	req.NoError(err)

	// When bob searches, only his conversation with alice is visible
	resp, err := submit(t, c, bob, domain.SearchHistory{Requester: "bob", Query: "lunch"})
	req.NoError(err)
	results := resp.(domain.SearchResults).Messages
	req.Len(results, 1)
	req.Equal("lunch at noon", results[0].Content)

	// And alice sees both
	resp, err = submit(t, c, alice, domain.SearchHistory{Requester: "alice", Query: "lunch", Limit: 10})
	req.NoError(err)
	req.Len(resp.(domain.SearchResults).Messages, 2)
}

func TestCoordinator_Search_Disabled(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	alice := register(t, c, "alice")

	_, err := submit(t, c, alice, domain.SearchHistory{Requester: "alice", Query: "x"})

	req.ErrorIs(err, errors.ErrSearchDisabled)
}

func TestCoordinator_Offline_Queue(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{OfflineQueueEnabled: true, OfflineQueueLimit: 10}, repositories.NewMemoryHistoryRepository(), nil)
	alice := register(t, c, "alice")

	_, err := submit(t, c, alice, domain.SendMessage{Sender: "alice", Recipient: "bob", Content: "first"})
	req.ErrorIs(err, errors.ErrRecipientNotFound)
	_, err = submit(t, c, alice, domain.SendMessage{Sender: "alice", Recipient: "bob", Content: "second"})
	req.ErrorIs(err, errors.ErrRecipientNotFound)

	// When bob registers the queue is flushed in order
	bob := register(t, c, "bob")
	req.Equal("first", bob.NextMessage(t).Content)
	req.Equal("second", bob.NextMessage(t).Content)

	resp, err := submit(t, c, bob, domain.GetChatHistory{User1: "bob", User2: "alice"})
	req.NoError(err)
	req.Len(resp.(domain.ChatHistory).Messages, 2)
}

func TestCoordinator_Stop(t *testing.T) {
	req := require.New(t)
	c := startCoordinator(t, CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil)
	register(t, c, "alice")

	c.Stop()
	c.Stop()

	_, err := submit(t, c, NewEndpoint(), domain.Register{Name: "bob"})
	req.ErrorIs(err, errors.ErrCoordinatorStopped)
}

func TestCoordinator_Restarts_After_Panic_With_State(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	memory := repositories.NewMemoryHistoryRepository()
	history := mocks.NewMockIHistoryRepository(ctrl)

	// Given the first append panics, the others reach memory
	history.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(domain.ConversationKey, domain.Message) error { panic("disk on fire") }).
		Times(1)
	history.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(memory.Append).AnyTimes()
	history.EXPECT().Get(gomock.Any()).DoAndReturn(memory.Get).AnyTimes()

	c := startCoordinator(t, CoordinatorConfig{}, history, nil)
	alice := register(t, c, "alice")

	// When the create request panics, its caller only gets its own deadline
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := c.Submit(ctx, alice, domain.CreateGroup{GroupName: "g1", Admin: "alice"})
	req.ErrorIs(err, context.DeadlineExceeded)

	// Then the restarted coordinator kept the registry and the groups
	_, err = submit(t, c, NewEndpoint(), domain.Register{Name: "alice"})
	req.ErrorIs(err, errors.ErrNameTaken)
	_, err = submit(t, c, alice, domain.CreateGroup{GroupName: "g1", Admin: "alice"})
	req.ErrorIs(err, errors.ErrAlreadyExists)
}

// TestCoordinator_Invariants_Hold_Under_Random_Operations drives dispatch directly,
// checking group invariants after every step.
func TestCoordinator_Invariants_Hold_Under_Random_Operations(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	c := NewCoordinator(CoordinatorConfig{}, repositories.NewMemoryHistoryRepository(), nil, nil, log)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	users := []string{"alice", "bob", "carl", "dave"}
	groups := []string{"g1", "g2"}
	endpoints := make(map[string]*Endpoint)
	pick := func(values []string) string { return values[rnd.Intn(len(values))] }

	for step := 0; step < 2000; step++ {
		user, other, group := pick(users), pick(users), pick(groups)
		var r domain.Request
		switch rnd.Intn(8) {
		case 0:
			endpoints[user] = NewEndpoint()
			_, _ = c.dispatch(ctx, endpoints[user], domain.Register{Name: user})
		case 1:
			if e, ok := endpoints[user]; ok {
				c.handleDisconnect(ctx, e.ID())
			}
			continue
		case 2:
			r = domain.CreateGroup{GroupName: group, Admin: user}
		case 3:
			r = domain.InviteToGroup{GroupName: group, Inviter: user, Invitee: other}
		case 4:
			r = domain.JoinGroup{GroupName: group, Username: user}
		case 5:
			r = domain.LeaveGroup{GroupName: group, Username: user}
		case 6:
			r = domain.DisbandGroup{GroupName: group, Username: user}
		case 7:
			r = domain.SendMessage{Sender: user, Recipient: other, Content: "hey"}
		}
		if r != nil {
			_, _ = c.dispatch(ctx, endpoints[user], r)
		}

		for name, g := range c.groups.groups {
			req.True(g.IsActive(), name)
			req.True(g.IsMember(g.Admin), name)
			for _, invitee := range g.PendingInvites() {
				req.False(g.IsMember(invitee), "%s: %s is both invited and member", name, invitee)
			}
		}
		seen := make(map[domain.EndpointID]bool)
		for _, name := range c.registry.Names() {
			endpoint, err := c.registry.Lookup(name)
			req.NoError(err)
			req.False(seen[endpoint.ID()], "endpoint holds two names")
			seen[endpoint.ID()] = true
		}
		drain(endpoints)
	}
}

func drain(endpoints map[string]*Endpoint) {
	for _, e := range endpoints {
		for len(e.inbox) > 0 {
			<-e.inbox
		}
	}
}

func TestCoordinator_Mailbox_Usage(t *testing.T) {
	req := require.New(t)
	c := NewCoordinator(CoordinatorConfig{MailboxSize: 4}, repositories.NewMemoryHistoryRepository(), nil, nil,
		logs.GetLoggerFromLevel(slog.LevelDebug))

	// Given nobody runs the coordinator, a disconnect stays queued
	c.Disconnect("ep-1")

	length, capacity := c.MailboxUsage()
	req.Equal(1, length)
	req.Equal(4, capacity)
}
