package store

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/index"
)

type requestAdd struct{}

func (requestAdd) Type() extensions.ActionType { return extensions.ActionRequestAdd }

func newTestStore(t *testing.T) (*Store, *database.DB, *events.Storage) {
	t.Helper()
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	logger := logr.Discard()
	eventStore := events.NewStorage(db, logger)
	return NewStore(db, index.NewIndex(), eventStore, logger), db, eventStore
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestStore_DispatchAdd(t *testing.T) {
	s, db, _ := newTestStore(t)
	entry := extensions.Entry{ID: "a", Kind: extensions.KindChrome, StoreURL: "u"}

	state, err := s.Dispatch(extensions.Add(entry))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	want := extensions.State{"a": entry}
	if !reflect.DeepEqual(state, want) {
		t.Errorf("Dispatch() state = %v, want %v", state, want)
	}
	if got, ok := s.Get("a"); !ok || got != entry {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}

	data, err := db.Get("extensions/a")
	if err != nil {
		t.Fatalf("entry not persisted: %v", err)
	}
	var persisted extensions.Entry
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("persisted entry unreadable: %v", err)
	}
	if persisted != entry {
		t.Errorf("persisted = %v, want %v", persisted, entry)
	}
}

func TestStore_DispatchDelete(t *testing.T) {
	s, db, _ := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "a", Progress: 1}))
	s.Dispatch(extensions.Add(extensions.Entry{ID: "b", Progress: 2}))

	state, err := s.Dispatch(extensions.Delete("a", "missing"))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(state) != 1 || state["b"].Progress != 2 {
		t.Errorf("state after delete = %v", state)
	}
	if _, err := db.Get("extensions/a"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("deleted entry still persisted: %v", err)
	}
}

func TestStore_DispatchUpdate(t *testing.T) {
	s, db, _ := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "a", Version: "1", Progress: 2}))

	state, err := s.Dispatch(extensions.Update("a", extensions.Patch{Progress: intPtr(9)}))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	want := extensions.Entry{ID: "a", Version: "1", Progress: 9}
	if state["a"] != want {
		t.Errorf("updated entry = %v, want %v", state["a"], want)
	}

	reloaded := NewStore(db, index.NewIndex(), nil, logr.Discard())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, _ := reloaded.Get("a"); got != want {
		t.Errorf("reloaded entry = %v, want %v", got, want)
	}
}

func TestStore_Load(t *testing.T) {
	s, db, _ := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "0", Kind: extensions.KindFirefox}))
	s.Dispatch(extensions.Add(extensions.Entry{ID: "1", Kind: extensions.KindOpera}))
	db.Set("extensions/broken", []byte("{not json"))

	reloaded := NewStore(db, index.NewIndex(), nil, logr.Discard())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	state := reloaded.State()
	if len(state) != 2 {
		t.Fatalf("expected 2 entries after load, got %d: %v", len(state), state)
	}
	if state["1"].Kind != extensions.KindOpera {
		t.Errorf("entry 1 = %v", state["1"])
	}
}

func TestStore_RejectsRequestAdd(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.Dispatch(requestAdd{})
	if !errors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("Dispatch(request add) error = %v, want ErrInvalid", err)
	}

	if _, err := s.Dispatch(nil); !errors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("Dispatch(nil) error = %v, want ErrInvalid", err)
	}
}

func TestStore_RecordsEvents(t *testing.T) {
	s, _, eventStore := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "a", StoreURL: "https://addons.opera.com/extensions/details/x/"}))
	s.Dispatch(extensions.Delete("a"))

	recorded, err := eventStore.ListEvents(events.EventFilters{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recorded))
	}

	byURL, _ := eventStore.GetEventsByResource("https://addons.opera.com/extensions/details/x/", 10)
	if len(byURL) != 1 || byURL[0].Details["operation"] != events.OperationAdd {
		t.Errorf("events for store URL = %v", byURL)
	}
}

func TestStore_PersistFailureKeepsState(t *testing.T) {
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	s := NewStore(db, index.NewIndex(), nil, logr.Discard())
	s.Dispatch(extensions.Add(extensions.Entry{ID: "a"}))

	db.Close()

	if _, err := s.Dispatch(extensions.Add(extensions.Entry{ID: "b"})); !errors.Is(err, apperrors.ErrStorage) {
		t.Errorf("Dispatch() on closed DB error = %v, want ErrStorage", err)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("state advanced although persistence failed")
	}
}

func TestStore_WithoutDB(t *testing.T) {
	s := NewStore(nil, index.NewIndex(), nil, logr.Discard())

	if _, err := s.Dispatch(extensions.Add(extensions.Entry{ID: "a"})); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if err := s.Load(); err != nil {
		t.Errorf("Load() without DB error = %v", err)
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("Load() without DB should keep in-memory state")
	}
}

func TestStore_DeleteOnlyMissingIsNoop(t *testing.T) {
	s, _, eventStore := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "a"}))
	before := s.State()

	state, err := s.Dispatch(extensions.Delete("missing", "also-missing"))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !reflect.DeepEqual(state, before) {
		t.Errorf("state = %v, want %v", state, before)
	}

	recorded, err := eventStore.ListEvents(events.EventFilters{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(recorded) != 1 {
		t.Errorf("expected only the add event, got %d events", len(recorded))
	}
}

func TestStore_WatchIDs(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "3"}))

	ids := extensions.NewCounterIDGenerator()
	s.WatchIDs(ids)
	s.Dispatch(extensions.Add(extensions.Entry{ID: "7"}))
	s.Dispatch(extensions.Update("3", extensions.Patch{ID: strPtr("12")}))

	if got := ids.Next(); got != "13" {
		t.Errorf("Next() = %s, want 13", got)
	}
	if _, err := s.Dispatch(extensions.Add(extensions.Entry{ID: ids.Next()})); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(s.State()) != 4 {
		t.Errorf("expected 4 entries, got %v", s.State())
	}
}

func TestStore_Ready(t *testing.T) {
	s, db, _ := newTestStore(t)
	if err := s.Ready(); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	db.Close()
	if err := s.Ready(); !errors.Is(err, apperrors.ErrStorage) {
		t.Errorf("Ready() after close error = %v, want ErrStorage", err)
	}

	if err := NewStore(nil, index.NewIndex(), nil, logr.Discard()).Ready(); err != nil {
		t.Errorf("Ready() without DB error = %v", err)
	}
}
