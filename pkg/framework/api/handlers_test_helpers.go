package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/index"
	"github.com/garunski/extension-conductor/pkg/framework/store"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

const testChromeID = "aapbdbdomjkkjkaonfhkkikfgjllcleb"

type testHandlerConfig struct {
	db            *database.DB
	eventStore    events.EventStorage
	eventStoreSet bool
	fetcher       validation.Fetcher
	timeout       time.Duration
	noValidator   bool
}

type testHandlerOption func(*testHandlerConfig)

func WithNilEventStore() testHandlerOption {
	return func(c *testHandlerConfig) {
		c.eventStore = nil
		c.eventStoreSet = true
	}
}

func WithFetcher(f validation.Fetcher) testHandlerOption {
	return func(c *testHandlerConfig) {
		c.fetcher = f
	}
}

func WithValidateTimeout(d time.Duration) testHandlerOption {
	return func(c *testHandlerConfig) {
		c.timeout = d
	}
}

func WithoutValidator() testHandlerOption {
	return func(c *testHandlerConfig) {
		c.noValidator = true
	}
}

// statusFetcher answers every fetch with status.
func statusFetcher(status int) validation.Fetcher {
	return validation.FetcherFunc(func(ctx context.Context, url string) (int, error) {
		return status, nil
	})
}

type testEnv struct {
	handler    *Handler
	store      *store.Store
	eventStore *events.Storage
	db         *database.DB
}

func newTestEnv(t *testing.T, opts ...testHandlerOption) *testEnv {
	t.Helper()
	logger := logr.Discard()

	cfg := testHandlerConfig{
		fetcher: statusFetcher(http.StatusOK),
		timeout: time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}

	eventStorage := events.NewStorage(db, logger)
	st := store.NewStore(db, index.NewIndex(), eventStorage, logger)

	var eventStore events.EventStorage = eventStorage
	if cfg.eventStoreSet {
		eventStore = cfg.eventStore
	}

	var validator *validation.Validator
	if !cfg.noValidator {
		validator, err = validation.NewValidator(cfg.fetcher, logger,
			validation.WithConfig(validation.Config{Timeout: cfg.timeout}),
			validation.WithEventRecorder(eventStorage),
		)
		if err != nil {
			t.Fatalf("NewValidator() error = %v", err)
		}
	}

	ids := extensions.NewCounterIDGenerator()
	st.WatchIDs(ids)

	handler, err := NewHandler(st, validator, eventStore, ids, logger, "test-app", "test-version")
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	return &testEnv{handler: handler, store: st, eventStore: eventStorage, db: db}
}

func newTestHandler(t *testing.T, opts ...testHandlerOption) *Handler {
	t.Helper()
	return newTestEnv(t, opts...).handler
}
