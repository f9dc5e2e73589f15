// Package state provides the backends that persist the allocation window as
// a single document: memory, a JSON file, PostgreSQL, SQLite, BadgerDB and
// S3-compatible object storage.
package state

import "context"

// UpdateFunc receives the stored document (nil when nothing is stored) and
// returns the document to store. A nil result leaves storage untouched and
// an error aborts the update without writing.
type UpdateFunc func(current []byte) ([]byte, error)

// Repository persists one opaque document with whole-document replace
// semantics.
type Repository interface {
	// Load returns the stored document or common.ErrorNotFound. It takes no
	// lock and never writes; the window store goes through Update, and
	// Load serves read-only inspection such as `equipctl dump`.
	Load(ctx context.Context) ([]byte, error)

	// Update runs fn inside the backend's atomic section and stores its result.
	Update(ctx context.Context, fn UpdateFunc) error
}
