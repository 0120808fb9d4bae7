package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"fmt"
)

// dispatch runs one request to completion on the coordinator goroutine.
func (c *Coordinator) dispatch(ctx context.Context, endpoint contract.Endpoint, req domain.Request) (domain.Response, error) {
	switch r := req.(type) {
	case domain.Register:
		return c.register(ctx, endpoint, r)
	case domain.FindClients:
		return domain.ClientList{Names: c.registry.ListOthers(r.Requester)}, nil
	case domain.SendMessage:
		msg, err := c.router.Send(ctx, r)
		if err != nil {
			return nil, err
		}
		return domain.MessageEcho{Message: msg}, nil
	case domain.GetChatHistory:
		return domain.ChatHistory{Messages: c.chatHistory(r)}, nil
	case domain.CreateGroup:
		view, err := c.groups.Create(ctx, r.GroupName, r.Admin)
		if err != nil {
			return nil, err
		}
		return domain.GroupCreated{Group: view}, nil
	case domain.InviteToGroup:
		confirmation, err := c.groups.Invite(ctx, r.GroupName, r.Inviter, r.Invitee)
		if err != nil {
			return nil, err
		}
		return domain.SystemMessage{Content: confirmation}, nil
	case domain.JoinGroup:
		view, history, err := c.groups.Join(ctx, r.GroupName, r.Username)
		if err != nil {
			return nil, err
		}
		return domain.JoinedGroup{Group: view, History: history}, nil
	case domain.LeaveGroup:
		if err := c.groups.Leave(ctx, r.GroupName, r.Username); err != nil {
			return nil, err
		}
		return domain.LeftGroup{GroupName: r.GroupName}, nil
	case domain.DisbandGroup:
		if err := c.groups.Disband(ctx, r.GroupName, r.Username); err != nil {
			return nil, err
		}
		return domain.GroupDisbanded{GroupName: r.GroupName}, nil
	case domain.GetGroupInfo:
		view, messages, err := c.groups.Info(r.GroupName, r.Username)
		if err != nil {
			return nil, err
		}
		return domain.GroupChatHistory{Group: view, Messages: messages}, nil
	case domain.GetGroupList:
		return domain.GroupList{Groups: c.groups.ListFor(r.Username)}, nil
	case domain.SearchHistory:
		return c.search(ctx, r)
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownRequest, req)
	}
}

func (c *Coordinator) register(ctx context.Context, endpoint contract.Endpoint, r domain.Register) (domain.Response, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("%w: register without endpoint", errors.ErrInvalidRequest)
	}
	if err := c.registry.Register(r.Name, endpoint); err != nil {
		return nil, err
	}
	c.log.Info("Client registered", "name", r.Name, "endpoint", endpoint.ID())
	if c.announce {
		c.router.Announce(ctx, fmt.Sprintf("%s joined the chat", r.Name), r.Name)
	}
	c.router.FlushOffline(ctx, r.Name)
	return domain.RegistrationSuccess{Name: r.Name}, nil
}

func (c *Coordinator) chatHistory(r domain.GetChatHistory) []domain.Message {
	if r.GroupName != "" {
		return c.groups.History(r.GroupName)
	}
	messages, err := c.history.Get(domain.DirectKey(r.User1, r.User2))
	if err != nil {
		c.log.Error("Unable to read direct history", "user1", r.User1, "user2", r.User2, "error", err)
		return []domain.Message{}
	}
	return messages
}

// search is scoped to the requester: its direct conversations, its groups and the system log.
func (c *Coordinator) search(ctx context.Context, r domain.SearchHistory) (domain.Response, error) {
	if c.index == nil {
		return nil, errors.ErrSearchDisabled
	}
	scope := domain.SearchScope{
		Participant:      r.Requester,
		ConversationKeys: append(c.groups.KeysFor(r.Requester), domain.SystemKey),
	}
	messages, err := c.index.Search(ctx, scope, r.Query, r.Limit)
	if err != nil {
		return nil, err
	}
	return domain.SearchResults{Messages: messages}, nil
}
