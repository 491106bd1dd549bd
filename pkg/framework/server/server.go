package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/api"
	"github.com/garunski/extension-conductor/pkg/framework/database"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/store"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

// Config holds server configuration
type Config struct {
	AppName            string
	AppVersion         string
	DataPath           string
	Port               string
	SeedPath           string // optional YAML seed file
	ValidateTimeout    time.Duration
	AutoAdd            bool
	LogRetentionDays   int
	LogCleanupInterval time.Duration
}

type Server struct {
	config     *Config
	logger     logr.Logger
	db         *database.DB
	store      *store.Store
	eventStore events.EventStorage
	validator  *validation.Validator
	handler    *api.Handler
	httpServer *http.Server
}

func NewServer(cfg *Config, logger logr.Logger) (*Server, error) {
	storage, err := NewStorageComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	ids := extensions.NewCounterIDGenerator()
	storage.Store.WatchIDs(ids)

	timeout := cfg.ValidateTimeout
	if timeout <= 0 {
		timeout = validation.DefaultTimeout
	}
	validator, err := validation.NewValidator(
		validation.NewHTTPFetcher(&http.Client{Timeout: DefaultFetchTimeout}),
		logger.WithName("validation"),
		validation.WithConfig(validation.Config{Timeout: timeout, AutoAdd: cfg.AutoAdd}),
		validation.WithEventRecorder(storage.EventStore),
		validation.WithDispatcher(storage.Store, ids),
	)
	if err != nil {
		storage.DB.Close()
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	handler, err := api.NewHandler(
		storage.Store,
		validator,
		storage.EventStore,
		ids,
		logger,
		cfg.AppName,
		cfg.AppVersion,
	)
	if err != nil {
		storage.DB.Close()
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	return &Server{
		config:     cfg,
		logger:     logger,
		db:         storage.DB,
		store:      storage.Store,
		eventStore: storage.EventStore,
		validator:  validator,
		handler:    handler,
		httpServer: httpServer,
	}, nil
}

func (s *Server) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
