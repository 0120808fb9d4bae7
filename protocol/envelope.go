// Package protocol defines the JSON envelopes exchanged with chat clients
// and the per-connection pump shared by every transport.
package protocol

import (
	"encoding/json"
	"time"
)

// Envelope is the unit of every exchange.
// Responses echo the RequestID of their request; notifications carry none.
type Envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Request types.
const (
	TypeRegister       = "register"
	TypeFindClients    = "find_clients"
	TypeSendMessage    = "send_message"
	TypeGetChatHistory = "get_chat_history"
	TypeCreateGroup    = "create_group"
	TypeInviteToGroup  = "invite_to_group"
	TypeJoinGroup      = "join_group"
	TypeLeaveGroup     = "leave_group"
	TypeDisbandGroup   = "disband_group"
	TypeGetGroupInfo   = "get_group_info"
	TypeGetGroupList   = "get_group_list"
	TypeSearchHistory  = "search_history"
)

// Response types.
const (
	TypeRegistrationSuccess = "registration_success"
	TypeClientList          = "client_list"
	TypeMessageEcho         = "message_echo"
	TypeChatHistory         = "chat_history"
	TypeGroupCreated        = "group_created"
	TypeSystemMessage       = "system_message"
	TypeJoinedGroup         = "joined_group"
	TypeLeftGroup           = "left_group"
	TypeGroupDisbanded      = "group_disbanded"
	TypeGroupChatHistory    = "group_chat_history"
	TypeGroupList           = "group_list"
	TypeSearchResults       = "search_results"
	TypeError               = "error"
)

// Notification types.
const (
	TypeIncomingMessage      = "incoming_message"
	TypeGroupInvitation      = "group_invitation"
	TypeGroupDisbandedNotice = "group_disbanded_notice"
)

type RegisterPayload struct {
	Name string `json:"name"`
}

type FindClientsPayload struct {
	Requester string `json:"requester"`
}

type SendMessagePayload struct {
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient,omitempty"`
	Content     string `json:"content"`
	Kind        string `json:"kind,omitempty"`
	TargetGroup string `json:"target_group,omitempty"`
}

type GetChatHistoryPayload struct {
	User1     string `json:"user1,omitempty"`
	User2     string `json:"user2,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

type CreateGroupPayload struct {
	GroupName string `json:"group_name"`
	Admin     string `json:"admin"`
}

type InviteToGroupPayload struct {
	GroupName string `json:"group_name"`
	Inviter   string `json:"inviter"`
	Invitee   string `json:"invitee"`
}

// GroupMemberPayload serves join, leave, disband and info requests.
type GroupMemberPayload struct {
	GroupName string `json:"group_name"`
	Username  string `json:"username"`
}

type GetGroupListPayload struct {
	Username string `json:"username"`
}

type SearchHistoryPayload struct {
	Requester string `json:"requester"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
}

type MessagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target,omitempty"`
	Lang      string    `json:"lang,omitempty"`
}

type GroupPayload struct {
	Name           string    `json:"name"`
	Admin          string    `json:"admin"`
	Members        []string  `json:"members"`
	PendingInvites []string  `json:"pending_invites"`
	MemberCount    int       `json:"member_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type GroupSummaryPayload struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	IsMember    bool   `json:"is_member"`
	HasInvite   bool   `json:"has_invite"`
}

type NamePayload struct {
	Name string `json:"name"`
}

type NamesPayload struct {
	Names []string `json:"names"`
}

type ContentPayload struct {
	Content string `json:"content"`
}

type GroupNamePayload struct {
	GroupName string `json:"group_name"`
}

type SingleMessagePayload struct {
	Message MessagePayload `json:"message"`
}

type MessagesPayload struct {
	Messages []MessagePayload `json:"messages"`
}

type GroupCreatedPayload struct {
	Group GroupPayload `json:"group"`
}

type GroupHistoryPayload struct {
	Group    GroupPayload     `json:"group"`
	Messages []MessagePayload `json:"messages"`
}

type GroupListPayload struct {
	Groups []GroupSummaryPayload `json:"groups"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type GroupInvitationPayload struct {
	GroupName string `json:"group_name"`
	Inviter   string `json:"inviter"`
}

type GroupDisbandedNoticePayload struct {
	GroupName string `json:"group_name"`
	Admin     string `json:"admin"`
}
