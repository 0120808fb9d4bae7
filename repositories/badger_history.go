package repositories

import (
	"chat-hub/domain"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// BadgerHistoryRepository keeps every log in an in-memory badger instance.
// Nothing is written to disk, history ends with the process.
type BadgerHistoryRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq atomic.Uint64
}

// OpenInMemoryBadger opens a badger instance without any directory.
func OpenInMemoryBadger() (*badger.DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

func NewBadgerHistoryRepository(db *badger.DB, log *slog.Logger) *BadgerHistoryRepository {
	return &BadgerHistoryRepository{db: db, log: log}
}

// Append stores a message under "msg:{conversation}:{seq_padded}".
// The sequence is shared by all conversations and padded to 19 digits,
// so a forward prefix scan returns a log in arrival order even when
// two messages carry the same timestamp.
func (b *BadgerHistoryRepository) Append(key domain.ConversationKey, msg domain.Message) error {
	k := fmt.Sprintf("msg:%s:%019d", key, b.seq.Add(1))
	value := marshalMessage(msg)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(k), value)
	})
}

func (b *BadgerHistoryRepository) Get(key domain.ConversationKey) ([]domain.Message, error) {
	messages := []domain.Message{}
	prefix := []byte(fmt.Sprintf("msg:%s:", key))
	err := b.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				msg, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.log.Error("Unable to read history", "conversation", key, "error", err)
		return nil, err
	}
	return messages, nil
}
