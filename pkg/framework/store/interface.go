package store

import "github.com/garunski/extension-conductor/pkg/framework/extensions"

// ExtensionStore is the dispatching container around the extensions reducer.
type ExtensionStore interface {
	// Dispatch applies a state action and returns the resulting state
	Dispatch(action extensions.Action) (extensions.State, error)

	// State returns the current state; callers must not modify it
	State() extensions.State

	// Get returns one entry by id
	Get(id string) (extensions.Entry, bool)

	// Ready reports whether the backing storage is usable
	Ready() error

	// Load replaces the in-memory state with what is persisted
	Load() error
}

var _ ExtensionStore = (*Store)(nil)
