//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Endpoint is the addressable side of one client connection.
// Deliver must not block: a slow endpoint loses notifications rather than stalling the caller.
type Endpoint interface {
	ID() domain.EndpointID
	Deliver(ctx context.Context, n domain.Notification) error
}

type ICoordinator interface {
	Submit(ctx context.Context, endpoint Endpoint, req domain.Request) (domain.Response, error)
	Disconnect(id domain.EndpointID)
}

// IHistoryRepository is an append-only log per conversation.
// Get returns a snapshot the caller may keep.
type IHistoryRepository interface {
	Append(key domain.ConversationKey, msg domain.Message) error
	Get(key domain.ConversationKey) ([]domain.Message, error)
}

type HistoryIndex interface {
	Add(key domain.ConversationKey, msg domain.Message) error
	Search(ctx context.Context, scope domain.SearchScope, query string, limit int) ([]domain.Message, error)
}

type IModerator interface {
	Censor(text string) (string, []string)
	DetectLang(text string) string
}
