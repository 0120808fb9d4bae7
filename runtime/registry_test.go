package runtime

import (
	"chat-hub/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	endpoint := NewEndpoint()

	// Given no user is connected
	req.Empty(registry.Names())

	// When a participant registers
	req.NoError(registry.Register("alice", endpoint))

	// Then
	found, err := registry.Lookup("alice")
	req.NoError(err)
	req.Equal(endpoint, found)
	name, ok := registry.NameOf(endpoint.ID())
	req.True(ok)
	req.Equal("alice", name)
	req.True(registry.IsLive("alice"))
}

func TestRegistry_Register_Name_Taken(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := NewEndpoint()

	req.NoError(registry.Register("carl", first))

	// When another endpoint claims the same name
	err := registry.Register("carl", NewEndpoint())

	// Then the first session is untouched
	req.ErrorIs(err, errors.ErrNameTaken)
	found, err := registry.Lookup("carl")
	req.NoError(err)
	req.Equal(first, found)
}

func TestRegistry_Register_Endpoint_Already_Named(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	endpoint := NewEndpoint()
	req.NoError(registry.Register("alice", endpoint))

	req.ErrorIs(registry.Register("alicia", endpoint), errors.ErrAlreadyRegistered)
	req.False(registry.IsLive("alicia"))
}

func TestRegistry_Unregister_Frees_Name(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	endpoint := NewEndpoint()
	req.NoError(registry.Register("carl", endpoint))

	// When the endpoint goes away
	name, ok := registry.Unregister(endpoint.ID())

	// Then the name can be claimed again
	req.True(ok)
	req.Equal("carl", name)
	_, err := registry.Lookup("carl")
	req.ErrorIs(err, errors.ErrRecipientNotFound)
	req.NoError(registry.Register("carl", NewEndpoint()))

	// And unregistering twice is a no-op
	_, ok = registry.Unregister(endpoint.ID())
	req.False(ok)
}

func TestRegistry_ListOthers_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	for _, name := range []string{"dave", "alice", "carl", "bob"} {
		req.NoError(registry.Register(name, NewEndpoint()))
	}

	req.Equal([]string{"alice", "carl", "dave"}, registry.ListOthers("bob"))
	req.Equal([]string{"alice", "bob", "carl", "dave"}, registry.Names())
	req.Equal([]string{"alice", "bob", "carl", "dave"}, registry.ListOthers("nobody"))
}
