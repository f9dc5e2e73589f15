package state

import "database/sql"

var postgresQueries = sqlQueries{
	load:      `SELECT payload FROM allocation_state WHERE id = $1`,
	lockedGet: `SELECT payload FROM allocation_state WHERE id = $1 FOR UPDATE`,
	upsert: `
		INSERT INTO allocation_state (id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
}

// NewPostgresRepository binds a SQLRepository to a pgx-backed *sql.DB.
// The row is locked with SELECT ... FOR UPDATE for the duration of an update.
func NewPostgresRepository(db *sql.DB, key string) *SQLRepository {
	return &SQLRepository{db: db, key: key, queries: postgresQueries}
}
