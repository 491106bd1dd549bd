package testing

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/index"
	"github.com/garunski/extension-conductor/pkg/framework/store"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

// NewTestLogger creates a test logger
func NewTestLogger() logr.Logger {
	zapLog, _ := zap.NewDevelopment()
	return zapr.NewLogger(zapLog)
}

// NewTestDB creates a test database
func NewTestDB(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

// NewTestEventStore creates a test event store
func NewTestEventStore(t testing.TB) *events.Storage {
	return events.NewStorage(NewTestDB(t), logr.Discard())
}

// NewTestStore creates an extension store over an in-memory database,
// seeded with entries.
func NewTestStore(t testing.TB, entries ...extensions.Entry) *store.Store {
	t.Helper()
	db := NewTestDB(t)
	st := store.NewStore(db, index.NewIndex(), events.NewStorage(db, logr.Discard()), logr.Discard())
	for _, e := range entries {
		if _, err := st.Dispatch(extensions.Add(e)); err != nil {
			t.Fatalf("failed to seed entry %s: %v", e.ID, err)
		}
	}
	return st
}

// NewTestValidator creates a validator whose fetches always answer status.
func NewTestValidator(t testing.TB, status int, opts ...validation.Option) *validation.Validator {
	t.Helper()
	fetcher := validation.FetcherFunc(func(ctx context.Context, url string) (int, error) {
		return status, nil
	})
	v, err := validation.NewValidator(fetcher, logr.Discard(), opts...)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return v
}
