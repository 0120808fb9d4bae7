package domain

// SearchScope bounds a history search to what one user may read:
// the direct conversations of Participant plus the listed group logs.
type SearchScope struct {
	Participant      string
	ConversationKeys []ConversationKey
}
