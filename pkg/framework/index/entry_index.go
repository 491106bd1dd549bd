package index

import (
	"sync"

	"github.com/garunski/extension-conductor/pkg/framework/extensions"
)

// EntryIndex holds the current state snapshot. Snapshots produced by the
// reducer are never mutated, so readers may share them.
type EntryIndex struct {
	mu    sync.RWMutex
	state extensions.State
}

func NewIndex() *EntryIndex {
	return &EntryIndex{
		state: extensions.Initial(),
	}
}

func (idx *EntryIndex) Get(id string) (extensions.Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.state[id]
	return e, ok
}

// Snapshot returns the current state without copying it.
func (idx *EntryIndex) Snapshot() extensions.State {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.state
}

// List returns a copy of the current state that the caller may modify.
func (idx *EntryIndex) List() extensions.State {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := make(extensions.State, len(idx.state))
	for k, v := range idx.state {
		result[k] = v
	}
	return result
}

func (idx *EntryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.state)
}

func (idx *EntryIndex) Replace(state extensions.State) {
	if state == nil {
		state = extensions.Initial()
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.state = state
}
