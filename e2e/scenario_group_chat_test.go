package e2e

import (
	"chat-hub/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testGroupChatSuite struct {
	BaseGrpcSuite
}

func TestGroupChatSuite(t *testing.T) {
	suite.Run(t, &testGroupChatSuite{})
}

func (s *testGroupChatSuite) next(ch <-chan domain.Notification, match func(domain.Notification) bool) domain.Notification {
	deadline := time.After(5 * time.Second)
	for {
		select {
		case n, ok := <-ch:
			s.Require().True(ok, "session closed")
			if match(n) {
				return n
			}
		case <-deadline:
			s.Require().Fail("expected notification not received")
			return nil
		}
	}
}

func (s *testGroupChatSuite) TestInviteJoinTalkDisband() {
	t := s.T()
	adminName, guestName := s.UniqueName("admin"), s.UniqueName("guest")
	group := s.UniqueName("g")
	admin := s.Connect(t, adminName)
	guest := s.Connect(t, guestName)

	s.Run("Step 1: Admin creates the group and invites the guest", func() {
		s.WithTimeout(func(ctx context.Context) {
			view, err := admin.CreateGroup(ctx, group)
			s.Require().NoError(err)
			s.Require().Equal(adminName, view.Admin)
			_, err = admin.Invite(ctx, group, guestName)
			s.Require().NoError(err)
		})
		invitation := s.next(guest.Notifications(), func(n domain.Notification) bool {
			_, ok := n.(domain.GroupInvitation)
			return ok
		})
		s.Require().Equal(domain.GroupInvitation{GroupName: group, Inviter: adminName}, invitation)
	})

	s.Run("Step 2: Guest joins and talks", func() {
		s.WithTimeout(func(ctx context.Context) {
			view, _, err := guest.Join(ctx, group)
			s.Require().NoError(err)
			s.Require().Contains(view.Members, guestName)
			_, err = guest.SendGroup(ctx, group, "hello from e2e")
			s.Require().NoError(err)
		})
		s.next(admin.Notifications(), func(n domain.Notification) bool {
			incoming, ok := n.(domain.IncomingMessage)
			return ok && incoming.Message.Content == "hello from e2e"
		})
	})

	s.Run("Step 3: Admin disbands", func() {
		s.WithTimeout(func(ctx context.Context) {
			s.Require().NoError(admin.Disband(ctx, group))
		})
		s.next(guest.Notifications(), func(n domain.Notification) bool {
			_, ok := n.(domain.GroupDisbandedNotice)
			return ok
		})
	})
}
