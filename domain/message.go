// Package domain contains core concepts of the chat system.
// This file defines Message values and their kinds.
// Messages are immutable once built and live in exactly one conversation history.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind int

const (
	DirectKind MessageKind = iota
	GroupKind
	SystemKind
)

func (k MessageKind) String() string {
	switch k {
	case DirectKind:
		return "direct"
	case GroupKind:
		return "group"
	case SystemKind:
		return "system"
	default:
		return "unknown"
	}
}

// ParseMessageKind is the inverse of MessageKind.String.
func ParseMessageKind(s string) (MessageKind, bool) {
	switch s {
	case "direct", "":
		return DirectKind, true
	case "group":
		return GroupKind, true
	case "system":
		return SystemKind, true
	default:
		return DirectKind, false
	}
}

// SystemSender is the author of every announcement synthesized by the coordinator.
// A System message sent by a client keeps that client as Sender.
const SystemSender = "SYSTEM"

// Message represents an immutable chat event. Constructors store Timestamp in UTC.
type Message struct {
	ID        uuid.UUID
	Sender    string
	Recipient string // direct messages only
	Content   string
	Timestamp time.Time
	Kind      MessageKind
	Target    string // group name for group and group system messages
	Lang      string // ISO 639-1, empty when unknown
}

func NewDirectMessage(sender, recipient, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Timestamp: at.UTC(),
		Kind:      DirectKind,
	}
}

func NewGroupMessage(sender, group, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Content:   content,
		Timestamp: at.UTC(),
		Kind:      GroupKind,
		Target:    group,
	}
}

// NewSystemMessage builds an announcement. group is empty for chat-wide announcements.
func NewSystemMessage(group, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    SystemSender,
		Content:   content,
		Timestamp: at.UTC(),
		Kind:      SystemKind,
		Target:    group,
	}
}

func (m Message) WithLang(lang string) Message {
	m.Lang = lang
	return m
}

func (m Message) IsSystem() bool {
	return m.Kind == SystemKind
}
