package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"feedapp/app/logging"
)

// maxTxnRetries bounds how often a read-write transaction is replayed after
// an optimistic conflict.
const maxTxnRetries = 5

// BadgerStore implements Store on an embedded Badger database.
type BadgerStore struct {
	db       *badger.DB
	dbPath   string
	isTestDB bool
}

// NewRepository opens (or creates) the Badger database at path. An empty
// path or "test_db" opens a throwaway database in a temp directory that is
// removed on Close.
func NewRepository(path string) (*BadgerStore, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "feedapp_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{l: logging.With("badger")}).
		WithNumVersionsToKeep(1)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumGoroutines(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db, dbPath: path, isTestDB: isTest}, nil
}

// DB exposes the underlying database for backup and restore.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// view runs fn in a read-only transaction.
func (s *BadgerStore) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction, replaying it on conflict.
// fn must not keep state between attempts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) && attempt < maxTxnRetries {
			continue
		}
		return err
	}
}

// getEntity loads and decodes the value at key, mapping a missing key to
// ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// getString reads a raw string value (used by the secondary indexes).
func getString(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(f string, v ...interface{})   { b.l.Error().Msgf(f, v...) }
func (b badgerLogger) Warningf(f string, v ...interface{}) { b.l.Warn().Msgf(f, v...) }
func (b badgerLogger) Infof(f string, v ...interface{})    { b.l.Debug().Msgf(f, v...) }
func (b badgerLogger) Debugf(f string, v ...interface{})   { b.l.Trace().Msgf(f, v...) }
