// Package repomanager opens the configured storage backend for the
// allocation window, running schema migrations (via goose) for the SQL
// backends, and owns the underlying handles until Close.
package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/config"
	"github.com/dmitrijs2005/equiptracker/internal/server/migrations"
	"github.com/dmitrijs2005/equiptracker/internal/server/repositories/state"
)

// Manager holds the state repository of one backend and the resources
// behind it.
type Manager struct {
	backend string
	state   state.Repository
	closers []func() error
}

// seams for tests
var (
	sqlOpen = sql.Open

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}

	openBadger = state.OpenBadger

	newS3Client = func(ctx context.Context, st state.S3Settings) (state.ObjectAPI, error) {
		return state.NewS3Client(ctx, st)
	}
)

// Open connects to cfg.StorageBackend and returns a Manager vending its
// state repository.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Manager, error) {
	m := &Manager{backend: cfg.StorageBackend}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		m.state = state.NewMemoryRepository()

	case config.BackendFile:
		m.state = state.NewFileRepository(cfg.DataFile)

	case config.BackendPostgres:
		db, err := openSQL(ctx, "pgx", cfg.DatabaseDSN, "pgx", migrations.PostgresDir)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, db.Close)
		m.state = state.NewPostgresRepository(db, cfg.StateKey)

	case config.BackendSQLite:
		db, err := openSQL(ctx, "sqlite", cfg.SQLitePath, "sqlite3", migrations.SQLiteDir)
		if err != nil {
			return nil, err
		}
		// one writer at a time keeps SQLite from returning SQLITE_BUSY
		db.SetMaxOpenConns(1)
		m.closers = append(m.closers, db.Close)
		m.state = state.NewSQLiteRepository(db, cfg.StateKey)

	case config.BackendBadger:
		db, err := openBadger(cfg.BadgerDir, false, slogOf(logger))
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, db.Close)
		m.state = state.NewBadgerRepository(db, cfg.StateKey)

	case config.BackendS3:
		client, err := newS3Client(ctx, state.S3Settings{
			User:         cfg.S3RootUser,
			Password:     cfg.S3RootPassword,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		m.state = state.NewS3Repository(client, cfg.S3Bucket, cfg.StateKey)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	logger.Info(ctx, "storage opened", "backend", cfg.StorageBackend)
	return m, nil
}

// Backend names the storage backend in use.
func (m *Manager) Backend() string {
	return m.backend
}

// State returns the repository holding the allocation window.
func (m *Manager) State() state.Repository {
	return m.state
}

// Close releases database handles in reverse order of acquisition.
func (m *Manager) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func openSQL(ctx context.Context, driver, dsn, dialect, dir string) (*sql.DB, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := RunMigrations(ctx, db, dialect, dir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// RunMigrations sets up goose with the embedded migrations and applies the
// ones under dir using dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func slogOf(logger logging.Logger) *slog.Logger {
	if s, ok := logger.(interface{ Slog() *slog.Logger }); ok {
		return s.Slog()
	}
	return nil
}
