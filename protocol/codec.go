package protocol

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

func envelope(typ, requestID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: typ, RequestID: requestID, Payload: raw}, nil
}

func decodePayload[T any](env Envelope) (T, error) {
	var payload T
	if len(env.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return payload, fmt.Errorf("%w: %s payload: %v", errors.ErrInvalidRequest, env.Type, err)
	}
	return payload, nil
}

// DecodeRequest turns a client envelope into a request.
func DecodeRequest(env Envelope) (domain.Request, error) {
	switch env.Type {
	case TypeRegister:
		p, err := decodePayload[RegisterPayload](env)
		return domain.Register{Name: p.Name}, err
	case TypeFindClients:
		p, err := decodePayload[FindClientsPayload](env)
		return domain.FindClients{Requester: p.Requester}, err
	case TypeSendMessage:
		p, err := decodePayload[SendMessagePayload](env)
		if err != nil {
			return nil, err
		}
		kind, ok := domain.ParseMessageKind(p.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown message kind %q", errors.ErrInvalidRequest, p.Kind)
		}
		return domain.SendMessage{
			Sender:      p.Sender,
			Recipient:   p.Recipient,
			Content:     p.Content,
			Kind:        kind,
			TargetGroup: p.TargetGroup,
		}, nil
	case TypeGetChatHistory:
		p, err := decodePayload[GetChatHistoryPayload](env)
		return domain.GetChatHistory{User1: p.User1, User2: p.User2, GroupName: p.GroupName}, err
	case TypeCreateGroup:
		p, err := decodePayload[CreateGroupPayload](env)
		return domain.CreateGroup{GroupName: p.GroupName, Admin: p.Admin}, err
	case TypeInviteToGroup:
		p, err := decodePayload[InviteToGroupPayload](env)
		return domain.InviteToGroup{GroupName: p.GroupName, Inviter: p.Inviter, Invitee: p.Invitee}, err
	case TypeJoinGroup:
		p, err := decodePayload[GroupMemberPayload](env)
		return domain.JoinGroup{GroupName: p.GroupName, Username: p.Username}, err
	case TypeLeaveGroup:
		p, err := decodePayload[GroupMemberPayload](env)
		return domain.LeaveGroup{GroupName: p.GroupName, Username: p.Username}, err
	case TypeDisbandGroup:
		p, err := decodePayload[GroupMemberPayload](env)
		return domain.DisbandGroup{GroupName: p.GroupName, Username: p.Username}, err
	case TypeGetGroupInfo:
		p, err := decodePayload[GroupMemberPayload](env)
		return domain.GetGroupInfo{GroupName: p.GroupName, Username: p.Username}, err
	case TypeGetGroupList:
		p, err := decodePayload[GetGroupListPayload](env)
		return domain.GetGroupList{Username: p.Username}, err
	case TypeSearchHistory:
		p, err := decodePayload[SearchHistoryPayload](env)
		return domain.SearchHistory{Requester: p.Requester, Query: p.Query, Limit: p.Limit}, err
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownRequest, env.Type)
	}
}

// EncodeRequest is the client side of DecodeRequest.
func EncodeRequest(requestID string, req domain.Request) (Envelope, error) {
	switch r := req.(type) {
	case domain.Register:
		return envelope(TypeRegister, requestID, RegisterPayload{Name: r.Name})
	case domain.FindClients:
		return envelope(TypeFindClients, requestID, FindClientsPayload{Requester: r.Requester})
	case domain.SendMessage:
		return envelope(TypeSendMessage, requestID, SendMessagePayload{
			Sender:      r.Sender,
			Recipient:   r.Recipient,
			Content:     r.Content,
			Kind:        r.Kind.String(),
			TargetGroup: r.TargetGroup,
		})
	case domain.GetChatHistory:
		return envelope(TypeGetChatHistory, requestID, GetChatHistoryPayload{User1: r.User1, User2: r.User2, GroupName: r.GroupName})
	case domain.CreateGroup:
		return envelope(TypeCreateGroup, requestID, CreateGroupPayload{GroupName: r.GroupName, Admin: r.Admin})
	case domain.InviteToGroup:
		return envelope(TypeInviteToGroup, requestID, InviteToGroupPayload{GroupName: r.GroupName, Inviter: r.Inviter, Invitee: r.Invitee})
	case domain.JoinGroup:
		return envelope(TypeJoinGroup, requestID, GroupMemberPayload{GroupName: r.GroupName, Username: r.Username})
	case domain.LeaveGroup:
		return envelope(TypeLeaveGroup, requestID, GroupMemberPayload{GroupName: r.GroupName, Username: r.Username})
	case domain.DisbandGroup:
		return envelope(TypeDisbandGroup, requestID, GroupMemberPayload{GroupName: r.GroupName, Username: r.Username})
	case domain.GetGroupInfo:
		return envelope(TypeGetGroupInfo, requestID, GroupMemberPayload{GroupName: r.GroupName, Username: r.Username})
	case domain.GetGroupList:
		return envelope(TypeGetGroupList, requestID, GetGroupListPayload{Username: r.Username})
	case domain.SearchHistory:
		return envelope(TypeSearchHistory, requestID, SearchHistoryPayload{Requester: r.Requester, Query: r.Query, Limit: r.Limit})
	default:
		return Envelope{}, fmt.Errorf("%w: %T", errors.ErrUnknownRequest, req)
	}
}

func EncodeResponse(requestID string, resp domain.Response) (Envelope, error) {
	switch r := resp.(type) {
	case domain.RegistrationSuccess:
		return envelope(TypeRegistrationSuccess, requestID, NamePayload{Name: r.Name})
	case domain.ClientList:
		return envelope(TypeClientList, requestID, NamesPayload{Names: nonNil(r.Names)})
	case domain.MessageEcho:
		return envelope(TypeMessageEcho, requestID, SingleMessagePayload{Message: fromMessage(r.Message)})
	case domain.ChatHistory:
		return envelope(TypeChatHistory, requestID, MessagesPayload{Messages: fromMessages(r.Messages)})
	case domain.GroupCreated:
		return envelope(TypeGroupCreated, requestID, GroupCreatedPayload{Group: fromGroup(r.Group)})
	case domain.SystemMessage:
		return envelope(TypeSystemMessage, requestID, ContentPayload{Content: r.Content})
	case domain.JoinedGroup:
		return envelope(TypeJoinedGroup, requestID, GroupHistoryPayload{Group: fromGroup(r.Group), Messages: fromMessages(r.History)})
	case domain.LeftGroup:
		return envelope(TypeLeftGroup, requestID, GroupNamePayload{GroupName: r.GroupName})
	case domain.GroupDisbanded:
		return envelope(TypeGroupDisbanded, requestID, GroupNamePayload{GroupName: r.GroupName})
	case domain.GroupChatHistory:
		return envelope(TypeGroupChatHistory, requestID, GroupHistoryPayload{Group: fromGroup(r.Group), Messages: fromMessages(r.Messages)})
	case domain.GroupList:
		return envelope(TypeGroupList, requestID, GroupListPayload{Groups: lo.Map(r.Groups, func(g domain.GroupSummary, _ int) GroupSummaryPayload {
			return GroupSummaryPayload{Name: g.Name, MemberCount: g.MemberCount, IsMember: g.IsMember, HasInvite: g.HasInvite}
		})})
	case domain.SearchResults:
		return envelope(TypeSearchResults, requestID, MessagesPayload{Messages: fromMessages(r.Messages)})
	default:
		return Envelope{}, fmt.Errorf("unknown response %T", resp)
	}
}

// EncodeError never fails: the kind is the stable name of err.
func EncodeError(requestID string, err error) Envelope {
	raw, _ := json.Marshal(ErrorPayload{Kind: errors.Kind(err), Message: err.Error()})
	return Envelope{Type: TypeError, RequestID: requestID, Payload: raw}
}

// DecodeResponse returns the response, or the rebuilt sentinel error of an error envelope.
func DecodeResponse(env Envelope) (domain.Response, error) {
	switch env.Type {
	case TypeError:
		p, err := decodePayload[ErrorPayload](env)
		if err != nil {
			return nil, err
		}
		return nil, errors.FromKind(p.Kind, p.Message)
	case TypeRegistrationSuccess:
		p, err := decodePayload[NamePayload](env)
		return domain.RegistrationSuccess{Name: p.Name}, err
	case TypeClientList:
		p, err := decodePayload[NamesPayload](env)
		return domain.ClientList{Names: nonNil(p.Names)}, err
	case TypeMessageEcho:
		p, err := decodePayload[SingleMessagePayload](env)
		if err != nil {
			return nil, err
		}
		return domain.MessageEcho{Message: toMessage(p.Message)}, nil
	case TypeChatHistory:
		p, err := decodePayload[MessagesPayload](env)
		return domain.ChatHistory{Messages: toMessages(p.Messages)}, err
	case TypeGroupCreated:
		p, err := decodePayload[GroupCreatedPayload](env)
		return domain.GroupCreated{Group: toGroup(p.Group)}, err
	case TypeSystemMessage:
		p, err := decodePayload[ContentPayload](env)
		return domain.SystemMessage{Content: p.Content}, err
	case TypeJoinedGroup:
		p, err := decodePayload[GroupHistoryPayload](env)
		return domain.JoinedGroup{Group: toGroup(p.Group), History: toMessages(p.Messages)}, err
	case TypeLeftGroup:
		p, err := decodePayload[GroupNamePayload](env)
		return domain.LeftGroup{GroupName: p.GroupName}, err
	case TypeGroupDisbanded:
		p, err := decodePayload[GroupNamePayload](env)
		return domain.GroupDisbanded{GroupName: p.GroupName}, err
	case TypeGroupChatHistory:
		p, err := decodePayload[GroupHistoryPayload](env)
		return domain.GroupChatHistory{Group: toGroup(p.Group), Messages: toMessages(p.Messages)}, err
	case TypeGroupList:
		p, err := decodePayload[GroupListPayload](env)
		return domain.GroupList{Groups: lo.Map(p.Groups, func(g GroupSummaryPayload, _ int) domain.GroupSummary {
			return domain.GroupSummary{Name: g.Name, MemberCount: g.MemberCount, IsMember: g.IsMember, HasInvite: g.HasInvite}
		})}, err
	case TypeSearchResults:
		p, err := decodePayload[MessagesPayload](env)
		return domain.SearchResults{Messages: toMessages(p.Messages)}, err
	default:
		return nil, fmt.Errorf("unknown response type %q", env.Type)
	}
}

func EncodeNotification(n domain.Notification) (Envelope, error) {
	switch v := n.(type) {
	case domain.IncomingMessage:
		return envelope(TypeIncomingMessage, "", SingleMessagePayload{Message: fromMessage(v.Message)})
	case domain.GroupInvitation:
		return envelope(TypeGroupInvitation, "", GroupInvitationPayload{GroupName: v.GroupName, Inviter: v.Inviter})
	case domain.GroupDisbandedNotice:
		return envelope(TypeGroupDisbandedNotice, "", GroupDisbandedNoticePayload{GroupName: v.GroupName, Admin: v.Admin})
	default:
		return Envelope{}, fmt.Errorf("unknown notification %T", n)
	}
}

func DecodeNotification(env Envelope) (domain.Notification, error) {
	switch env.Type {
	case TypeIncomingMessage:
		p, err := decodePayload[SingleMessagePayload](env)
		if err != nil {
			return nil, err
		}
		return domain.IncomingMessage{Message: toMessage(p.Message)}, nil
	case TypeGroupInvitation:
		p, err := decodePayload[GroupInvitationPayload](env)
		return domain.GroupInvitation{GroupName: p.GroupName, Inviter: p.Inviter}, err
	case TypeGroupDisbandedNotice:
		p, err := decodePayload[GroupDisbandedNoticePayload](env)
		return domain.GroupDisbandedNotice{GroupName: p.GroupName, Admin: p.Admin}, err
	default:
		return nil, fmt.Errorf("unknown notification type %q", env.Type)
	}
}

// IsNotification tells pushed envelopes apart from responses.
func IsNotification(env Envelope) bool {
	switch env.Type {
	case TypeIncomingMessage, TypeGroupInvitation, TypeGroupDisbandedNotice:
		return true
	default:
		return false
	}
}

func fromMessage(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID.String(),
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Kind:      m.Kind.String(),
		Target:    m.Target,
		Lang:      m.Lang,
	}
}

func toMessage(p MessagePayload) domain.Message {
	kind, _ := domain.ParseMessageKind(p.Kind)
	id, _ := uuid.Parse(p.ID)
	return domain.Message{
		ID:        id,
		Sender:    p.Sender,
		Recipient: p.Recipient,
		Content:   p.Content,
		Timestamp: p.Timestamp,
		Kind:      kind,
		Target:    p.Target,
		Lang:      p.Lang,
	}
}

func fromMessages(messages []domain.Message) []MessagePayload {
	return lo.Map(nonNil(messages), func(m domain.Message, _ int) MessagePayload { return fromMessage(m) })
}

func toMessages(payloads []MessagePayload) []domain.Message {
	return lo.Map(nonNil(payloads), func(p MessagePayload, _ int) domain.Message { return toMessage(p) })
}

func fromGroup(g domain.GroupView) GroupPayload {
	return GroupPayload{
		Name:           g.Name,
		Admin:          g.Admin,
		Members:        nonNil(g.Members),
		PendingInvites: nonNil(g.PendingInvites),
		MemberCount:    g.MemberCount,
		CreatedAt:      g.CreatedAt,
	}
}

func toGroup(p GroupPayload) domain.GroupView {
	return domain.GroupView{
		Name:           p.Name,
		Admin:          p.Admin,
		Members:        nonNil(p.Members),
		PendingInvites: nonNil(p.PendingInvites),
		MemberCount:    p.MemberCount,
		CreatedAt:      p.CreatedAt,
	}
}

// nonNil keeps empty lists as [] on the wire.
func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
