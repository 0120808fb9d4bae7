package main

import (
	"chat-hub/domain"
	"chat-hub/ui"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// chatAPI is what the shell needs from client.Client.
type chatAPI interface {
	Name() string
	Users(ctx context.Context) ([]string, error)
	SendDirect(ctx context.Context, recipient, content string) (domain.Message, error)
	SendGroup(ctx context.Context, group, content string) (domain.Message, error)
	Broadcast(ctx context.Context, content string) (domain.Message, error)
	History(ctx context.Context, other string) ([]domain.Message, error)
	CreateGroup(ctx context.Context, group string) (domain.GroupView, error)
	Invite(ctx context.Context, group, invitee string) (string, error)
	Join(ctx context.Context, group string) (domain.GroupView, []domain.Message, error)
	Leave(ctx context.Context, group string) error
	Disband(ctx context.Context, group string) error
	GroupInfo(ctx context.Context, group string) (domain.GroupView, []domain.Message, error)
	Groups(ctx context.Context) ([]domain.GroupSummary, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Message, error)
}

const callTimeout = 5 * time.Second

// shell turns input lines into calls. A line that is not a command goes to the open chat.
// mu serializes input handling with pushed notifications.
type shell struct {
	mu       sync.Mutex
	api      chatAPI
	renderer *ui.Renderer
	peer     string // open direct chat
	group    string // open group chat
}

func newShell(api chatAPI, renderer *ui.Renderer) *shell {
	return &shell{api: api, renderer: renderer}
}

// Prompt reflects the open chat.
func (s *shell) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.group != "":
		return fmt.Sprintf("[%s] > ", s.group)
	case s.peer != "":
		return fmt.Sprintf("[@%s] > ", s.peer)
	default:
		return "> "
	}
}

// Handle runs one line and reports whether the user asked to quit.
func (s *shell) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if !strings.HasPrefix(line, "/") {
		s.say(ctx, line)
		return false
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit":
		return true
	case "/help":
		s.renderer.Help()
	case "/users":
		users, err := s.api.Users(ctx)
		if s.ok(err) {
			s.renderer.Users(users)
		}
	case "/chat":
		if s.need(arg, "/chat <user>") {
			s.openDirect(ctx, arg)
		}
	case "/history":
		if s.need(arg, "/history <user>") {
			history, err := s.api.History(ctx, arg)
			if s.ok(err) {
				s.renderer.History(arg, history)
			}
		}
	case "/create":
		if s.need(arg, "/create <group>") {
			group, err := s.api.CreateGroup(ctx, arg)
			if s.ok(err) {
				s.openGroup(group.Name)
				s.renderer.Info(fmt.Sprintf("Group %s created, invite people with /invite <user>", group.Name))
			}
		}
	case "/groups":
		groups, err := s.api.Groups(ctx)
		if s.ok(err) {
			s.renderer.Groups(groups)
		}
	case "/open":
		if s.need(arg, "/open <group>") {
			group, history, err := s.api.GroupInfo(ctx, arg)
			if s.ok(err) {
				s.openGroup(group.Name)
				s.renderer.History(group.Name, history)
			}
		}
	case "/invite":
		if s.need(arg, "/invite <user>") && s.inGroup() {
			confirmation, err := s.api.Invite(ctx, s.group, arg)
			if s.ok(err) {
				s.renderer.Info(confirmation)
			}
		}
	case "/join":
		if s.need(arg, "/join <group>") {
			group, history, err := s.api.Join(ctx, arg)
			if s.ok(err) {
				s.openGroup(group.Name)
				s.renderer.History(group.Name, history)
			}
		}
	case "/leave":
		if s.inGroup() && s.ok(s.api.Leave(ctx, s.group)) {
			s.renderer.Info(fmt.Sprintf("You left %s", s.group))
			s.group = ""
		}
	case "/disband":
		if s.inGroup() && s.ok(s.api.Disband(ctx, s.group)) {
			s.renderer.Info(fmt.Sprintf("Group %s disbanded", s.group))
			s.group = ""
		}
	case "/members":
		if s.inGroup() {
			group, _, err := s.api.GroupInfo(ctx, s.group)
			if s.ok(err) {
				s.renderer.Members(group)
			}
		}
	case "/search":
		if s.need(arg, "/search <text>") {
			results, err := s.api.Search(ctx, arg, 0)
			if s.ok(err) {
				s.renderer.History("search: "+arg, results)
			}
		}
	case "/broadcast":
		if s.need(arg, "/broadcast <text>") {
			msg, err := s.api.Broadcast(ctx, arg)
			if s.ok(err) {
				s.renderer.Message(msg)
			}
		}
	case "/exit":
		s.peer, s.group = "", ""
	default:
		s.renderer.Info(fmt.Sprintf("Unknown command %s, type /help", command))
	}
	return false
}

func (s *shell) say(ctx context.Context, content string) {
	var msg domain.Message
	var err error
	switch {
	case s.group != "":
		msg, err = s.api.SendGroup(ctx, s.group, content)
	case s.peer != "":
		msg, err = s.api.SendDirect(ctx, s.peer, content)
	default:
		s.renderer.Info("No chat open, use /chat <user> or /open <group>")
		return
	}
	if s.ok(err) {
		s.renderer.Message(msg)
	}
}

func (s *shell) openDirect(ctx context.Context, peer string) {
	history, err := s.api.History(ctx, peer)
	if !s.ok(err) {
		return
	}
	s.peer, s.group = peer, ""
	s.renderer.History(peer, history)
}

func (s *shell) openGroup(group string) {
	s.peer, s.group = "", group
}

// Notify renders a pushed notification. A disbanded open group is closed.
func (s *shell) Notify(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notice, ok := n.(domain.GroupDisbandedNotice); ok && notice.GroupName == s.group {
		s.group = ""
	}
	s.renderer.Notification(n)
}

func (s *shell) ok(err error) bool {
	if err != nil {
		s.renderer.Error(err)
		return false
	}
	return true
}

func (s *shell) need(arg, usage string) bool {
	if arg == "" {
		s.renderer.Info("Usage: " + usage)
		return false
	}
	return true
}

func (s *shell) inGroup() bool {
	if s.group == "" {
		s.renderer.Info("No group open, use /open <group>")
		return false
	}
	return true
}
