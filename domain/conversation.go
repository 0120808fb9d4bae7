package domain

import (
	"strings"
)

// ConversationKey identifies one message log.
//
//	dm:<a>:<b>                  a < b, shared by both directions
//	group:<name>:<incarnation>  one per group lifetime
//	system:broadcast            chat-wide announcements
//
// Names never contain ':' so keys of different namespaces never collide.
type ConversationKey string

const (
	directPrefix = "dm:"
	groupPrefix  = "group:"

	SystemKey ConversationKey = "system:broadcast"
)

// DirectKey returns the same key for (a, b) and (b, a).
func DirectKey(a, b string) ConversationKey {
	if b < a {
		a, b = b, a
	}
	return ConversationKey(directPrefix + a + ":" + b)
}

// GroupKey namespaces a group log; the incarnation separates successive groups sharing a name.
func GroupKey(name, incarnation string) ConversationKey {
	return ConversationKey(groupPrefix + name + ":" + incarnation)
}

func (k ConversationKey) IsDirect() bool {
	return strings.HasPrefix(string(k), directPrefix)
}

func (k ConversationKey) IsGroup() bool {
	return strings.HasPrefix(string(k), groupPrefix)
}

// Participants returns both names of a direct key, nil otherwise.
func (k ConversationKey) Participants() []string {
	if !k.IsDirect() {
		return nil
	}
	parts := strings.SplitN(strings.TrimPrefix(string(k), directPrefix), ":", 2)
	if len(parts) != 2 {
		return nil
	}
	return parts
}

func (k ConversationKey) String() string {
	return string(k)
}
