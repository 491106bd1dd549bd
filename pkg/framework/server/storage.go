package server

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/index"
	"github.com/garunski/extension-conductor/pkg/framework/seed"
	"github.com/garunski/extension-conductor/pkg/framework/store"
)

// StorageComponents holds all storage-related components
type StorageComponents struct {
	DB         *database.DB
	Index      *index.EntryIndex
	EventStore events.EventStorage
	Store      *store.Store
}

// NewStorageComponents opens the database, rebuilds the extension state from
// it and applies the seed file, if any.
func NewStorageComponents(cfg *Config, logger logr.Logger) (*StorageComponents, error) {
	logger.Info("Opening BadgerDB", "path", cfg.DataPath)
	db, err := database.NewDB(cfg.DataPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	idx := index.NewIndex()
	eventStore := events.NewStorage(db, logger)
	logger.Info("Event storage initialized")

	st := store.NewStore(db, idx, eventStore, logger)
	if err := st.Load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load extensions: %w", err)
	}
	logger.Info("Loaded extensions", "count", idx.Len())

	if cfg.SeedPath != "" {
		values := map[string]interface{}{
			"appName":    cfg.AppName,
			"appVersion": cfg.AppVersion,
		}
		if err := applySeed(st, cfg.SeedPath, values, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &StorageComponents{
		DB:         db,
		Index:      idx,
		EventStore: eventStore,
		Store:      st,
	}, nil
}

// applySeed adds entries from the seed file or directory that are not
// already stored. Persisted entries win over seeded ones.
func applySeed(st store.ExtensionStore, path string, values map[string]interface{}, logger logr.Logger) error {
	entries, err := seed.LoadPath(context.Background(), path, seed.Options{Values: values})
	if err != nil {
		return fmt.Errorf("failed to load seeds: %w", err)
	}

	added := 0
	for _, e := range entries {
		if _, ok := st.Get(e.ID); ok {
			continue
		}
		if _, err := st.Dispatch(extensions.Add(e)); err != nil {
			return fmt.Errorf("failed to seed extension %s: %w", e.ID, err)
		}
		added++
	}
	logger.Info("Applied seeds", "path", path, "entries", len(entries), "added", added)
	return nil
}
