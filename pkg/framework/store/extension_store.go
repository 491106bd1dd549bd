package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/index"
)

const keyPrefix = "extensions/"

type Store struct {
	// mu serializes dispatches; reads go through the index.
	mu       sync.Mutex
	db       *database.DB
	index    *index.EntryIndex
	recorder events.Recorder
	logger   logr.Logger

	observers []extensions.IDObserver
}

// NewStore wires the reducer to idx and, when db is non-nil, persists every
// transition to it. recorder may be nil.
func NewStore(db *database.DB, idx *index.EntryIndex, recorder events.Recorder, logger logr.Logger) *Store {
	return &Store{
		db:       db,
		index:    idx,
		recorder: recorder,
		logger:   logger,
	}
}

func entryKey(id string) string {
	return keyPrefix + id
}

func (s *Store) Dispatch(action extensions.Action) (extensions.State, error) {
	if action == nil {
		return s.index.Snapshot(), fmt.Errorf("%w: nil action", apperrors.ErrInvalid)
	}
	if action.Type() == extensions.ActionRequestAdd {
		return s.index.Snapshot(), fmt.Errorf("%w: %s does not change state", apperrors.ErrInvalid, action.Type())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.index.Snapshot()
	next := extensions.Reduce(prev, action)
	if sameState(prev, next) {
		s.logger.V(1).Info("action left state unchanged", "type", action.Type())
		return next, nil
	}

	sets, deletes, err := diff(prev, next)
	if err != nil {
		return prev, err
	}
	if len(sets) == 0 && len(deletes) == 0 {
		s.logger.V(1).Info("action left state unchanged", "type", action.Type())
		return prev, nil
	}
	if s.db != nil {
		if err := s.db.Apply(sets, deletes); err != nil {
			s.logger.Error(err, "failed to persist state transition", "type", action.Type())
			return prev, apperrors.WrapStorage(err, "persist "+string(action.Type()))
		}
	}

	s.index.Replace(next)
	for id := range next {
		if _, ok := prev[id]; !ok {
			s.observe(id)
		}
	}
	s.logger.V(1).Info("dispatched", "type", action.Type(), "written", len(sets), "deleted", len(deletes), "entries", len(next))
	s.record(action)
	return next, nil
}

// WatchIDs reports every id already in state to o, then every id each later
// dispatch introduces.
func (s *Store) WatchIDs(o extensions.IDObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.index.Snapshot() {
		o.Observe(id)
	}
	s.observers = append(s.observers, o)
}

func (s *Store) observe(id string) {
	for _, o := range s.observers {
		o.Observe(id)
	}
}

// Ready reports whether dispatches can be persisted.
func (s *Store) Ready() error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping()
}

func (s *Store) State() extensions.State {
	return s.index.Snapshot()
}

func (s *Store) Get(id string) (extensions.Entry, bool) {
	return s.index.Get(id)
}

func (s *Store) Load() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.db.List(keyPrefix)
	if err != nil {
		return fmt.Errorf("load extensions: %w", err)
	}

	state := make(extensions.State, len(items))
	for key, data := range items {
		var e extensions.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			s.logger.Error(err, "skipping unreadable entry", "key", key)
			continue
		}
		state[strings.TrimPrefix(key, keyPrefix)] = e
	}

	s.index.Replace(state)
	for id := range state {
		s.observe(id)
	}
	s.logger.Info("Loaded extensions", "count", len(state))
	return nil
}

func (s *Store) record(action extensions.Action) {
	var event events.Event
	switch a := action.(type) {
	case extensions.AddAction:
		event = events.Info(a.Entry.StoreURL, events.OperationAdd, "Extension added").WithDetail("id", a.Entry.ID)
	case extensions.DeleteAction:
		event = events.Info("", events.OperationDelete, "Extensions deleted").WithDetail("ids", a.IDs)
	case extensions.UpdateAction:
		event = events.Info("", events.OperationUpdate, "Extension updated").WithDetail("id", a.ID)
	default:
		return
	}
	events.StoreEventSafe(s.recorder, s.logger, event)
}

// sameState reports whether next is prev itself, which is how the reducer
// signals an action it ignored.
func sameState(prev, next extensions.State) bool {
	return reflect.ValueOf(prev).Pointer() == reflect.ValueOf(next).Pointer()
}

func diff(prev, next extensions.State) (map[string][]byte, []string, error) {
	sets := make(map[string][]byte)
	for id, e := range next {
		if old, ok := prev[id]; ok && old == e {
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: marshal entry %s: %w", apperrors.ErrStorage, id, err)
		}
		sets[entryKey(id)] = data
	}

	var deletes []string
	for id := range prev {
		if _, ok := next[id]; !ok {
			deletes = append(deletes, entryKey(id))
		}
	}
	return sets, deletes, nil
}
