package runtime

import (
	"chat-hub/domain"
	"log/slog"
)

// OfflineQueue stores direct messages for names that have no live session.
// Each queue keeps at most limit messages, the oldest is dropped first.
type OfflineQueue struct {
	limit  int
	queues map[string][]domain.Message
	log    *slog.Logger
}

func NewOfflineQueue(limit int, log *slog.Logger) *OfflineQueue {
	if limit <= 0 {
		limit = 1
	}
	return &OfflineQueue{limit: limit, queues: make(map[string][]domain.Message), log: log}
}

func (q *OfflineQueue) Enqueue(name string, msg domain.Message) {
	queue := append(q.queues[name], msg)
	if len(queue) > q.limit {
		q.log.Warn("Offline queue full, dropping oldest message", "name", name, "limit", q.limit)
		queue = queue[len(queue)-q.limit:]
	}
	q.queues[name] = queue
}

// Drain returns the queued messages of name in arrival order and forgets them.
func (q *OfflineQueue) Drain(name string) []domain.Message {
	queue := q.queues[name]
	delete(q.queues, name)
	return queue
}

func (q *OfflineQueue) Len(name string) int {
	return len(q.queues[name])
}
