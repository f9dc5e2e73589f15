package state

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const sqliteTestSchema = `
CREATE TABLE allocation_state (
    id         TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

func TestSQLiteRepository_Contract(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// every pooled connection to :memory: would see its own database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(sqliteTestSchema)
	require.NoError(t, err)

	exerciseRepository(t, NewSQLiteRepository(db, "allocations"))
}
