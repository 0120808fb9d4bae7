// Package search keeps a full-text index of chat history.
// The index lives in memory only and is rebuilt from nothing at each start.
package search

import (
	"chat-hub/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	blugesearch "github.com/blugelabs/bluge/search"
	"github.com/google/uuid"
)

const (
	fieldContent      = "content"
	fieldConversation = "conversation"
	fieldParticipant  = "participant"
	fieldSender       = "sender"
	fieldRecipient    = "recipient"
	fieldTarget       = "target"
	fieldKind         = "kind"
	fieldLang         = "lang"
	fieldAt           = "at"

	DefaultLimit = 20
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// Add indexes one message of the given conversation.
// Direct messages are tagged with both participants so that a search
// can be scoped to a user without knowing every direct key.
func (i *Index) Add(key domain.ConversationKey, msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField(fieldContent, msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField(fieldConversation, key.String()).StoreValue()).
		AddField(bluge.NewKeywordField(fieldSender, msg.Sender).StoreValue()).
		AddField(bluge.NewKeywordField(fieldKind, msg.Kind.String()).StoreValue()).
		AddField(bluge.NewDateTimeField(fieldAt, msg.Timestamp).StoreValue().Sortable())
	if msg.Recipient != "" {
		doc.AddField(bluge.NewKeywordField(fieldRecipient, msg.Recipient).StoreValue())
	}
	if msg.Target != "" {
		doc.AddField(bluge.NewKeywordField(fieldTarget, msg.Target).StoreValue())
	}
	if msg.Lang != "" {
		doc.AddField(bluge.NewKeywordField(fieldLang, msg.Lang).StoreValue())
	}
	for _, p := range key.Participants() {
		doc.AddField(bluge.NewKeywordField(fieldParticipant, p))
	}
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the messages matching query inside scope, newest first.
func (i *Index) Search(ctx context.Context, scope domain.SearchScope, query string, limit int) ([]domain.Message, error) {
	if scope.Participant == "" && len(scope.ConversationKeys) == 0 {
		return []domain.Message{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	visible := bluge.NewBooleanQuery().SetMinShould(1)
	if scope.Participant != "" {
		visible.AddShould(bluge.NewTermQuery(scope.Participant).SetField(fieldParticipant))
	}
	for _, key := range scope.ConversationKeys {
		visible.AddShould(bluge.NewTermQuery(key.String()).SetField(fieldConversation))
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField(fieldContent)).
		AddMust(visible)

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	request := bluge.NewTopNSearch(limit, q).SortBy([]string{"-" + fieldAt})
	dmi, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	results := []domain.Message{}
	match, err := dmi.Next()
	for err == nil && match != nil {
		msg, visitErr := toMessage(match)
		if visitErr != nil {
			i.log.Warn("Skipping unreadable search hit", "error", visitErr)
		} else {
			results = append(results, msg)
		}
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}
	i.log.Debug("History searched", "query", query, "hits", len(results))
	return results, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

func toMessage(match *blugesearch.DocumentMatch) (domain.Message, error) {
	var msg domain.Message
	var parseErr error
	err := match.VisitStoredFields(func(field string, value []byte) bool {
		switch field {
		case "_id":
			msg.ID, parseErr = uuid.ParseBytes(value)
		case fieldContent:
			msg.Content = string(value)
		case fieldSender:
			msg.Sender = string(value)
		case fieldRecipient:
			msg.Recipient = string(value)
		case fieldTarget:
			msg.Target = string(value)
		case fieldLang:
			msg.Lang = string(value)
		case fieldKind:
			kind, _ := domain.ParseMessageKind(string(value))
			msg.Kind = kind
		case fieldAt:
			var at time.Time
			at, parseErr = bluge.DecodeDateTime(value)
			msg.Timestamp = at.UTC()
		}
		return parseErr == nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, parseErr
}
