package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/dbx"
)

// sqlQueries are the dialect-specific statements of a SQL backend.
type sqlQueries struct {
	load      string
	lockedGet string
	upsert    string
}

// SQLRepository stores the document as one row of allocation_state keyed
// by the configured state key. Updates run in a transaction.
type SQLRepository struct {
	db      *sql.DB
	key     string
	queries sqlQueries
}

func (r *SQLRepository) Load(ctx context.Context) ([]byte, error) {
	payload, err := selectPayload(ctx, r.db, r.queries.load, r.key)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, common.ErrorNotFound
	}
	return payload, nil
}

func (r *SQLRepository) Update(ctx context.Context, fn UpdateFunc) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := selectPayload(ctx, tx, r.queries.lockedGet, r.key)
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

		res, err := tx.ExecContext(ctx, r.queries.upsert, r.key, string(next))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("unexpected rows affected: %d", n)
		}
		return nil
	})
}

func selectPayload(ctx context.Context, db dbx.DBTX, query, key string) ([]byte, error) {
	var payload string
	err := db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select state: %w", err)
	}
	return []byte(payload), nil
}
