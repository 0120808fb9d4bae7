package repositories

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"log/slog"
)

// IndexedHistoryRepository feeds the search index on every successful append.
// An index failure is logged and never fails the append itself.
type IndexedHistoryRepository struct {
	inner contract.IHistoryRepository
	index contract.HistoryIndex
	log   *slog.Logger
}

func NewIndexedHistoryRepository(inner contract.IHistoryRepository, index contract.HistoryIndex, log *slog.Logger) *IndexedHistoryRepository {
	return &IndexedHistoryRepository{inner: inner, index: index, log: log}
}

func (r *IndexedHistoryRepository) Append(key domain.ConversationKey, msg domain.Message) error {
	if err := r.inner.Append(key, msg); err != nil {
		return err
	}
	if err := r.index.Add(key, msg); err != nil {
		r.log.Warn("Unable to index message", "conversation", key, "id", msg.ID, "error", err)
	}
	return nil
}

func (r *IndexedHistoryRepository) Get(key domain.ConversationKey) ([]domain.Message, error) {
	return r.inner.Get(key)
}
