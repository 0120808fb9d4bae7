package client

import (
	"chat-hub/domain"
	"context"
)

func (c *Client) Register(ctx context.Context, name string) error {
	resp, err := expect[domain.RegistrationSuccess](c.call(ctx, domain.Register{Name: name}))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.name = resp.Name
	c.mu.Unlock()
	return nil
}

// Users lists the other registered clients.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	resp, err := expect[domain.ClientList](c.call(ctx, domain.FindClients{Requester: c.Name()}))
	return resp.Names, err
}

func (c *Client) SendDirect(ctx context.Context, recipient, content string) (domain.Message, error) {
	return c.send(ctx, domain.SendMessage{Sender: c.Name(), Recipient: recipient, Content: content, Kind: domain.DirectKind})
}

func (c *Client) SendGroup(ctx context.Context, group, content string) (domain.Message, error) {
	return c.send(ctx, domain.SendMessage{Sender: c.Name(), TargetGroup: group, Content: content, Kind: domain.GroupKind})
}

// Broadcast sends a system message to every other registered client.
func (c *Client) Broadcast(ctx context.Context, content string) (domain.Message, error) {
	return c.send(ctx, domain.SendMessage{Sender: c.Name(), Content: content, Kind: domain.SystemKind})
}

func (c *Client) send(ctx context.Context, msg domain.SendMessage) (domain.Message, error) {
	resp, err := expect[domain.MessageEcho](c.call(ctx, msg))
	return resp.Message, err
}

// History returns the direct conversation with other, oldest first.
func (c *Client) History(ctx context.Context, other string) ([]domain.Message, error) {
	resp, err := expect[domain.ChatHistory](c.call(ctx, domain.GetChatHistory{User1: c.Name(), User2: other}))
	return resp.Messages, err
}

func (c *Client) GroupHistory(ctx context.Context, group string) ([]domain.Message, error) {
	resp, err := expect[domain.ChatHistory](c.call(ctx, domain.GetChatHistory{GroupName: group}))
	return resp.Messages, err
}

func (c *Client) CreateGroup(ctx context.Context, group string) (domain.GroupView, error) {
	resp, err := expect[domain.GroupCreated](c.call(ctx, domain.CreateGroup{GroupName: group, Admin: c.Name()}))
	return resp.Group, err
}

// Invite returns the confirmation text of the hub.
func (c *Client) Invite(ctx context.Context, group, invitee string) (string, error) {
	resp, err := expect[domain.SystemMessage](c.call(ctx, domain.InviteToGroup{GroupName: group, Inviter: c.Name(), Invitee: invitee}))
	return resp.Content, err
}

func (c *Client) Join(ctx context.Context, group string) (domain.GroupView, []domain.Message, error) {
	resp, err := expect[domain.JoinedGroup](c.call(ctx, domain.JoinGroup{GroupName: group, Username: c.Name()}))
	return resp.Group, resp.History, err
}

func (c *Client) Leave(ctx context.Context, group string) error {
	_, err := expect[domain.LeftGroup](c.call(ctx, domain.LeaveGroup{GroupName: group, Username: c.Name()}))
	return err
}

func (c *Client) Disband(ctx context.Context, group string) error {
	_, err := expect[domain.GroupDisbanded](c.call(ctx, domain.DisbandGroup{GroupName: group, Username: c.Name()}))
	return err
}

// GroupInfo returns the group and its history. Only members can read it.
func (c *Client) GroupInfo(ctx context.Context, group string) (domain.GroupView, []domain.Message, error) {
	resp, err := expect[domain.GroupChatHistory](c.call(ctx, domain.GetGroupInfo{GroupName: group, Username: c.Name()}))
	return resp.Group, resp.Messages, err
}

func (c *Client) Groups(ctx context.Context) ([]domain.GroupSummary, error) {
	resp, err := expect[domain.GroupList](c.call(ctx, domain.GetGroupList{Username: c.Name()}))
	return resp.Groups, err
}

// Search runs a full-text query over the conversations this client can see.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	resp, err := expect[domain.SearchResults](c.call(ctx, domain.SearchHistory{Requester: c.Name(), Query: query, Limit: limit}))
	return resp.Messages, err
}
