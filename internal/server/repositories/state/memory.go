package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/equiptracker/internal/common"
)

// MemoryRepository keeps the document in process memory. It is used by
// tests and by the "memory" backend for throwaway instances.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil, common.ErrorNotFound
	}
	return clone(r.data), nil
}

func (r *MemoryRepository) Update(ctx context.Context, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(clone(r.data))
	if err != nil {
		return err
	}
	if next != nil {
		r.data = clone(next)
	}
	return nil
}

// Set replaces the stored document; tests use it to plant corrupt data.
func (r *MemoryRepository) Set(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = clone(data)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
