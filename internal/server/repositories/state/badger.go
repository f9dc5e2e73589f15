package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/filex"
)

// BadgerRepository stores the document under one key of an embedded
// BadgerDB. Updates run in a read-write transaction; a concurrent commit
// on the same key surfaces as common.ErrVersionConflict.
type BadgerRepository struct {
	db  *badger.DB
	key []byte
}

func NewBadgerRepository(db *badger.DB, key string) *BadgerRepository {
	return &BadgerRepository{db: db, key: []byte(key)}
}

func (r *BadgerRepository) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		data, err = r.get(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func (r *BadgerRepository) Update(ctx context.Context, fn UpdateFunc) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		current, err := r.get(txn)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return txn.Set(r.key, next)
	})
	if errors.Is(err, badger.ErrConflict) {
		return common.ErrVersionConflict
	}
	return err
}

func (r *BadgerRepository) get(txn *badger.Txn) ([]byte, error) {
	item, err := txn.Get(r.key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return item.ValueCopy(nil)
}

// OpenBadger opens a BadgerDB at path, or in memory when inMemory is set.
// Badger's own logging goes to logger when it is non-nil.
func OpenBadger(path string, inMemory bool, logger *slog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if path == "" {
			return nil, errors.New("path is required for persistent database")
		}
		if err := filex.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
