// Package services contains server-side business logic for allocation
// entries and their CSV export. Both the HTTP API and the CLI call into it.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/server/ordering"
	"github.com/dmitrijs2005/equiptracker/internal/server/window"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// Listing is the active window as presented to clients.
type Listing struct {
	Entries    []models.Entry
	ResetHours int
	LastReset  time.Time
}

// EntryService creates, lists and deletes allocation entries in the active
// window.
type EntryService struct {
	store  *window.Store
	clock  timex.Clock
	newID  func() string
	logger logging.Logger
}

// NewEntryService constructs an EntryService over store.
func NewEntryService(store *window.Store, clock timex.Clock, logger logging.Logger) *EntryService {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &EntryService{
		store:  store,
		clock:  clock,
		newID:  func() string { return uuid.NewString() },
		logger: logger.With("module", "entries"),
	}
}

// Create records a new entry stamped with the current instant and a fresh
// id. Name is trimmed; the other fields are stored as given.
func (s *EntryService) Create(ctx context.Context, in models.NewEntry) (*models.Entry, error) {
	var created models.Entry

	_, err := s.store.Mutate(ctx, func(w *models.Window) (bool, error) {
		id := s.newID()
		for w.Find(id) >= 0 {
			id = s.newID()
		}
		created = models.Entry{
			ID:                 id,
			Name:               strings.TrimSpace(in.Name),
			Location:           in.Location,
			Robot:              in.Robot,
			Surrogate:          in.Surrogate,
			Headset:            in.Headset,
			HeadsetOnSurrogate: in.HeadsetOnSurrogate,
			Timestamp:          timex.FormatInstant(s.clock.Now()),
		}
		w.Entries = append(w.Entries, created)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.logger.Info(ctx, "entry created", "id", created.ID, "location", models.Deref(created.Location))
	return &created, nil
}

// List returns the active window with entries newest first.
func (s *EntryService) List(ctx context.Context) (*Listing, error) {
	w, err := s.store.EnsureActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return &Listing{
		Entries:    ordering.ByNewest(w.Entries),
		ResetHours: int(s.store.Interval() / time.Hour),
		LastReset:  w.LastReset,
	}, nil
}

// Delete removes the entry with the given id, or returns
// common.ErrorNotFound when there is none.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	_, err := s.store.Mutate(ctx, func(w *models.Window) (bool, error) {
		if !w.Remove(id) {
			return false, common.ErrorNotFound
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	s.logger.Info(ctx, "entry deleted", "id", id)
	return nil
}
