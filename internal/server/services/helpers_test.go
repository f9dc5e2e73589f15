package services

import (
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/repositories/state"
	"github.com/dmitrijs2005/equiptracker/internal/server/window"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var base = time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *state.MemoryRepository
	clock   *stepClock
	store   *window.Store
	entries *EntryService
	export  *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := state.NewMemoryRepository()
	clock := &stepClock{now: base}
	store := window.NewStore(repo, clock, 168*time.Hour, logging.Nop())
	return &fixture{
		repo:    repo,
		clock:   clock,
		store:   store,
		entries: NewEntryService(store, clock, logging.Nop()),
		export:  NewExportService(store, clock, logging.Nop()),
	}
}
