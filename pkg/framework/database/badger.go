package database

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

var ErrNotFound = errors.New("key not found")

type DB struct {
	db     *badger.DB
	logger logr.Logger
}

func NewDB(path string, logger logr.Logger) (*DB, error) {

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("%w: storage create directory: failed to create DB directory at %s: %w", apperrors.ErrStorage, path, err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	// entries are small JSON documents, keep the value log compact
	opts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: storage open database: failed to open BadgerDB at %s: %w", apperrors.ErrStorage, path, err)
	}

	return &DB{
		db:     db,
		logger: logger,
	}, nil
}

func (d *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("key not found: %s: %w", key, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: storage get %s: %w", apperrors.ErrStorage, key, err)
	}

	return value, nil
}

func (d *DB) update(operation string, key string, fn func(*badger.Txn) error) error {
	err := d.db.Update(fn)
	if err != nil {
		return fmt.Errorf("%w: storage %s %s: %w", apperrors.ErrStorage, operation, key, err)
	}
	return nil
}

func (d *DB) Set(key string, value []byte) error {
	return d.update("set", key, func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (d *DB) Delete(key string) error {
	return d.update("delete", key, func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (d *DB) List(prefix string) (map[string][]byte, error) {
	results := make(map[string][]byte)
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			results[string(item.KeyCopy(nil))] = val
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: storage list %s: %w", apperrors.ErrStorage, prefix, err)
	}
	return results, nil
}

// Apply writes sets and deletes in a single transaction so a state
// transition is persisted all-or-nothing.
func (d *DB) Apply(sets map[string][]byte, deletes []string) error {
	if len(sets) == 0 && len(deletes) == 0 {
		return nil
	}

	txn := d.db.NewTransaction(true)
	defer txn.Discard()

	for key, value := range sets {
		if err := txn.Set([]byte(key), value); err != nil {
			return fmt.Errorf("%w: storage apply set %s: %w", apperrors.ErrStorage, key, err)
		}
	}

	for _, key := range deletes {
		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("%w: storage apply delete %s: %w", apperrors.ErrStorage, key, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%w: storage apply commit: %w", apperrors.ErrStorage, err)
	}

	d.logger.V(1).Info("applied batch", "sets", len(sets), "deletes", len(deletes))
	return nil
}

func (d *DB) BatchSet(items map[string][]byte) error {
	return d.Apply(items, nil)
}

func (d *DB) BatchDelete(keys []string) error {
	return d.Apply(nil, keys)
}

// Ping fails once the database has been closed.
func (d *DB) Ping() error {
	if d.db.IsClosed() {
		return fmt.Errorf("%w: database is closed", apperrors.ErrStorage)
	}
	return nil
}

func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	return d.db.Close()
}

// NewTestDB creates an in-memory database that is closed when the test ends
func NewTestDB(t testing.TB) (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create test DB: %w", err)
	}
	testDB := &DB{db: db, logger: logr.Discard()}
	if t != nil {
		t.Cleanup(func() { testDB.Close() })
	}
	return testDB, nil
}
