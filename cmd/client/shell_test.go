package main

import (
	"bytes"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/ui"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeAPI answers like a hub where alice is alone with group g1.
type fakeAPI struct {
	sentDirect []string
	sentGroup  []string
	left       []string
}

func (f *fakeAPI) Name() string { return "alice" }
func (f *fakeAPI) Users(context.Context) ([]string, error) {
	return []string{"bob"}, nil
}
func (f *fakeAPI) SendDirect(_ context.Context, recipient, content string) (domain.Message, error) {
	if recipient == "ghost" {
		return domain.Message{}, errors.ErrRecipientNotFound
	}
	f.sentDirect = append(f.sentDirect, recipient+":"+content)
	return domain.NewDirectMessage("alice", recipient, content, at), nil
}
func (f *fakeAPI) SendGroup(_ context.Context, group, content string) (domain.Message, error) {
	f.sentGroup = append(f.sentGroup, group+":"+content)
	return domain.NewGroupMessage("alice", group, content, at), nil
}
func (f *fakeAPI) Broadcast(_ context.Context, content string) (domain.Message, error) {
	return domain.NewSystemMessage("", content, at), nil
}
func (f *fakeAPI) History(context.Context, string) ([]domain.Message, error) {
	return []domain.Message{}, nil
}
func (f *fakeAPI) CreateGroup(_ context.Context, group string) (domain.GroupView, error) {
	return domain.GroupView{Name: group, Admin: "alice", Members: []string{"alice"}}, nil
}
func (f *fakeAPI) Invite(_ context.Context, group, invitee string) (string, error) {
	return "Invitation sent to " + invitee + " for group " + group, nil
}
func (f *fakeAPI) Join(_ context.Context, group string) (domain.GroupView, []domain.Message, error) {
	return domain.GroupView{}, nil, errors.ErrNoPendingInvite
}
func (f *fakeAPI) Leave(_ context.Context, group string) error {
	f.left = append(f.left, group)
	return errors.ErrAdminCannotLeave
}
func (f *fakeAPI) Disband(context.Context, string) error { return nil }
func (f *fakeAPI) GroupInfo(_ context.Context, group string) (domain.GroupView, []domain.Message, error) {
	return domain.GroupView{Name: group, Admin: "alice", Members: []string{"alice", "bob"}}, nil, nil
}
func (f *fakeAPI) Groups(context.Context) ([]domain.GroupSummary, error) {
	return []domain.GroupSummary{{Name: "g1", MemberCount: 2, IsMember: true}}, nil
}
func (f *fakeAPI) Search(context.Context, string, int) ([]domain.Message, error) {
	return nil, errors.ErrSearchDisabled
}

func newTestShell() (*shell, *fakeAPI, *bytes.Buffer) {
	var out bytes.Buffer
	renderer := ui.NewRenderer(&out, false).WithLocation(time.UTC)
	renderer.SetSelf("alice")
	api := &fakeAPI{}
	return newShell(api, renderer), api, &out
}

func TestShell_Direct_Chat(t *testing.T) {
	req := require.New(t)
	sh, api, out := newTestShell()
	ctx := context.Background()

	// Given no chat is open, plain text is not sent
	req.False(sh.Handle(ctx, "hello?"))
	req.Empty(api.sentDirect)
	req.Contains(out.String(), "No chat open")

	// When alice opens a chat with bob and writes
	sh.Handle(ctx, "/chat bob")
	req.Equal("[@bob] > ", sh.Prompt())
	sh.Handle(ctx, "hi bob")

	// Then the message goes to bob and is echoed as You
	req.Equal([]string{"bob:hi bob"}, api.sentDirect)
	req.Contains(out.String(), "[10:00:00] You: hi bob")

	sh.Handle(ctx, "/exit")
	req.Equal("> ", sh.Prompt())
}

func TestShell_Group_Commands(t *testing.T) {
	req := require.New(t)
	sh, api, out := newTestShell()
	ctx := context.Background()

	sh.Handle(ctx, "/create g1")
	req.Equal("[g1] > ", sh.Prompt())
	sh.Handle(ctx, "/invite bob")
	req.Contains(out.String(), "Invitation sent to bob for group g1")
	sh.Handle(ctx, "hello team")
	req.Equal([]string{"g1:hello team"}, api.sentGroup)

	// The admin cannot leave, the group stays open
	sh.Handle(ctx, "/leave")
	req.Equal([]string{"g1"}, api.left)
	req.Contains(out.String(), "Error: admin cannot leave the group, disband it instead")
	req.Equal("[g1] > ", sh.Prompt())

	sh.Handle(ctx, "/members")
	req.Contains(out.String(), "bob")

	sh.Handle(ctx, "/disband")
	req.Equal("> ", sh.Prompt())
}

func TestShell_Notifications_And_Errors(t *testing.T) {
	req := require.New(t)
	sh, _, out := newTestShell()
	ctx := context.Background()

	sh.Handle(ctx, "/open g1")
	sh.Notify(domain.GroupDisbandedNotice{GroupName: "g1", Admin: "bob"})
	req.Equal("> ", sh.Prompt())
	req.Contains(out.String(), "Group g1 was disbanded by bob")

	sh.Notify(domain.GroupInvitation{GroupName: "g2", Inviter: "bob"})
	req.Contains(out.String(), "/join g2")

	sh.Handle(ctx, "/join g2")
	req.Contains(out.String(), "Error: no pending invitation for the group")
	sh.Handle(ctx, "/search lunch")
	req.Contains(out.String(), "Error: history search is disabled")
	sh.Handle(ctx, "/invite")
	req.Contains(out.String(), "Usage: /invite <user>")
	sh.Handle(ctx, "/teleport")
	req.Contains(out.String(), "Unknown command /teleport")

	req.True(sh.Handle(ctx, "/quit"))
}
