package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

type session struct {
	name     string
	endpoint contract.Endpoint
}

// Registry is the only owner of the name -> endpoint mapping.
// It holds no lock: every call is made from the coordinator goroutine.
type Registry struct {
	sessions  map[string]session            // map name -> live session
	endpoints map[domain.EndpointID]string // map endpoint -> name
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[string]session),
		endpoints: make(map[domain.EndpointID]string),
	}
}

// Register binds name to endpoint. A name is held by at most one live session,
// and an endpoint carries at most one name.
func (r *Registry) Register(name string, endpoint contract.Endpoint) error {
	if _, taken := r.sessions[name]; taken {
		return fmt.Errorf("%w: %s", errors.ErrNameTaken, name)
	}
	if current, bound := r.endpoints[endpoint.ID()]; bound {
		return fmt.Errorf("%w: %s", errors.ErrAlreadyRegistered, current)
	}
	r.sessions[name] = session{name: name, endpoint: endpoint}
	r.endpoints[endpoint.ID()] = name
	return nil
}

// Unregister removes the session bound to id and returns the released name.
// Unknown endpoints are a no-op.
func (r *Registry) Unregister(id domain.EndpointID) (string, bool) {
	name, ok := r.endpoints[id]
	if !ok {
		return "", false
	}
	delete(r.endpoints, id)
	delete(r.sessions, name)
	return name, true
}

func (r *Registry) Lookup(name string) (contract.Endpoint, error) {
	s, ok := r.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrRecipientNotFound, name)
	}
	return s.endpoint, nil
}

func (r *Registry) IsLive(name string) bool {
	_, ok := r.sessions[name]
	return ok
}

func (r *Registry) NameOf(id domain.EndpointID) (string, bool) {
	name, ok := r.endpoints[id]
	return name, ok
}

// ListOthers returns every live name except excluding, sorted.
func (r *Registry) ListOthers(excluding string) []string {
	names := lo.Filter(lo.Keys(r.sessions), func(name string, _ int) bool {
		return name != excluding
	})
	sort.Strings(names)
	return names
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.sessions)
	sort.Strings(names)
	return names
}
