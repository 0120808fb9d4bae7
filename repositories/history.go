package repositories

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"fmt"
	"log/slog"
)

// MemoryHistoryRepository is a plain map of logs.
// It holds no lock: it is only ever touched from the coordinator goroutine.
type MemoryHistoryRepository struct {
	logs map[domain.ConversationKey][]domain.Message
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{logs: make(map[domain.ConversationKey][]domain.Message)}
}

func (m *MemoryHistoryRepository) Append(key domain.ConversationKey, msg domain.Message) error {
	m.logs[key] = append(m.logs[key], msg)
	return nil
}

// Get returns a copy so that later appends never show through a previous read.
func (m *MemoryHistoryRepository) Get(key domain.ConversationKey) ([]domain.Message, error) {
	return append([]domain.Message{}, m.logs[key]...), nil
}

type Backend string

const (
	MemoryBackend Backend = "memory"
	BadgerBackend Backend = "badger"
)

// HistoryOptions selects and decorates the history backend at startup.
type HistoryOptions struct {
	Backend Backend
	Index   contract.HistoryIndex // nil disables indexing
}

// NewHistoryRepository builds the configured backend. The returned close func releases it.
func NewHistoryRepository(opts HistoryOptions, log *slog.Logger) (contract.IHistoryRepository, func() error, error) {
	var repo contract.IHistoryRepository
	closer := func() error { return nil }
	switch opts.Backend {
	case MemoryBackend, "":
		repo = NewMemoryHistoryRepository()
	case BadgerBackend:
		db, err := OpenInMemoryBadger()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger: %w", err)
		}
		repo = NewBadgerHistoryRepository(db, log)
		closer = db.Close
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", opts.Backend)
	}
	if opts.Index != nil {
		repo = NewIndexedHistoryRepository(repo, opts.Index, log)
	}
	log.Info("History store ready", "backend", opts.Backend, "indexed", opts.Index != nil)
	return repo, closer, nil
}
