package domain

// Response is the closed set of successful replies. Failures travel as errors.
type Response interface {
	isResponse()
}

type RegistrationSuccess struct {
	Name string
}

type ClientList struct {
	Names []string
}

// MessageEcho returns the stored message to its sender.
type MessageEcho struct {
	Message Message
}

type ChatHistory struct {
	Messages []Message
}

type GroupCreated struct {
	Group GroupView
}

// SystemMessage is a plain confirmation, used for invitations.
type SystemMessage struct {
	Content string
}

type JoinedGroup struct {
	Group   GroupView
	History []Message
}

type LeftGroup struct {
	GroupName string
}

type GroupDisbanded struct {
	GroupName string
}

type GroupChatHistory struct {
	Group    GroupView
	Messages []Message
}

type GroupList struct {
	Groups []GroupSummary
}

type SearchResults struct {
	Messages []Message
}

func (RegistrationSuccess) isResponse() {}
func (ClientList) isResponse()          {}
func (MessageEcho) isResponse()         {}
func (ChatHistory) isResponse()         {}
func (GroupCreated) isResponse()        {}
func (SystemMessage) isResponse()       {}
func (JoinedGroup) isResponse()         {}
func (LeftGroup) isResponse()           {}
func (GroupDisbanded) isResponse()      {}
func (GroupChatHistory) isResponse()    {}
func (GroupList) isResponse()           {}
func (SearchResults) isResponse()       {}
