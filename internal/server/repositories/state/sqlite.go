package state

import "database/sql"

// SQLite serializes writers at the database level, so the locked read is
// a plain SELECT.
var sqliteQueries = sqlQueries{
	load:      `SELECT payload FROM allocation_state WHERE id = ?`,
	lockedGet: `SELECT payload FROM allocation_state WHERE id = ?`,
	upsert: `
		INSERT INTO allocation_state (id, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id)
		DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
}

// NewSQLiteRepository binds a SQLRepository to a modernc.org/sqlite *sql.DB.
func NewSQLiteRepository(db *sql.DB, key string) *SQLRepository {
	return &SQLRepository{db: db, key: key, queries: sqliteQueries}
}
