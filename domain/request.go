package domain

// Request is the closed set of operations accepted by the coordinator.
// Implementations live in this file only.
type Request interface {
	isRequest()
}

// Names are printable ASCII without spaces or ':', which separates conversation key parts.
type Register struct {
	Name string `validate:"required,max=32,printascii,excludesall= :"`
}

type FindClients struct {
	Requester string `validate:"required,max=32,printascii,excludesall= :"`
}

type SendMessage struct {
	Sender      string      `validate:"required,max=32,printascii,excludesall= :"`
	Recipient   string      `validate:"required_if=Kind 0,max=32,excludesall= :"`
	Content     string      `validate:"required,max=4096"`
	Kind        MessageKind `validate:"min=0,max=2"`
	TargetGroup string      `validate:"required_if=Kind 1,max=32,excludesall= :"`
}

// GetChatHistory reads a direct history (User1, User2) or a group history (GroupName).
type GetChatHistory struct {
	User1     string `validate:"required_without=GroupName,max=32,excludesall= :"`
	User2     string `validate:"required_without=GroupName,max=32,excludesall= :"`
	GroupName string `validate:"max=32,excludesall= :"`
}

type CreateGroup struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Admin     string `validate:"required,max=32,printascii,excludesall= :"`
}

type InviteToGroup struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Inviter   string `validate:"required,max=32,printascii,excludesall= :"`
	Invitee   string `validate:"required,max=32,printascii,excludesall= :"`
}

type JoinGroup struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Username  string `validate:"required,max=32,printascii,excludesall= :"`
}

type LeaveGroup struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Username  string `validate:"required,max=32,printascii,excludesall= :"`
}

type DisbandGroup struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Username  string `validate:"required,max=32,printascii,excludesall= :"`
}

type GetGroupInfo struct {
	GroupName string `validate:"required,max=32,printascii,excludesall= :"`
	Username  string `validate:"required,max=32,printascii,excludesall= :"`
}

type GetGroupList struct {
	Username string `validate:"required,max=32,printascii,excludesall= :"`
}

// SearchHistory runs a full-text query over the conversations visible to Requester.
// A zero Limit means the default page size.
type SearchHistory struct {
	Requester string `validate:"required,max=32,printascii,excludesall= :"`
	Query     string `validate:"required,max=256"`
	Limit     int    `validate:"min=0,max=100"`
}

func (Register) isRequest()       {}
func (FindClients) isRequest()    {}
func (SendMessage) isRequest()    {}
func (GetChatHistory) isRequest() {}
func (CreateGroup) isRequest()    {}
func (InviteToGroup) isRequest()  {}
func (JoinGroup) isRequest()      {}
func (LeaveGroup) isRequest()     {}
func (DisbandGroup) isRequest()   {}
func (GetGroupInfo) isRequest()   {}
func (GetGroupList) isRequest()   {}
func (SearchHistory) isRequest()  {}
