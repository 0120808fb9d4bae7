package domain

// Notification is pushed to an endpoint outside of any request/response exchange.
type Notification interface {
	isNotification()
}

type IncomingMessage struct {
	Message Message
}

type GroupInvitation struct {
	GroupName string
	Inviter   string
}

type GroupDisbandedNotice struct {
	GroupName string
	Admin     string
}

func (IncomingMessage) isNotification()      {}
func (GroupInvitation) isNotification()      {}
func (GroupDisbandedNotice) isNotification() {}
