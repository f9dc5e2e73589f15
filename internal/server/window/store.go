// Package window owns the persisted allocation window: it materializes the
// window that is valid for the current instant (initializing, repairing or
// resetting the stored document as needed) and is the only code that writes
// the document back.
package window

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/server/repositories/state"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// maxAttempts bounds retries after a backend reports a version conflict.
const maxAttempts = 3

// document is the persisted layout as written.
type document struct {
	LastReset *string        `json:"last_reset"`
	Entries   []models.Entry `json:"entries"`
}

// storedDocument is read leniently: a malformed field is repaired on its
// own without discarding the rest of the document.
type storedDocument struct {
	LastReset json.RawMessage `json:"last_reset"`
	Entries   json.RawMessage `json:"entries"`
}

// MutateFunc edits the active window in place and reports whether it
// changed anything. When it returns an error its edits are discarded.
type MutateFunc func(w *models.Window) (changed bool, err error)

// ResetFunc is called after a reset has been persisted, with the number of
// entries it discarded.
type ResetFunc func(ctx context.Context, discarded int)

// Store materializes and mutates the allocation window kept in a
// state.Repository.
type Store struct {
	repo     state.Repository
	clock    timex.Clock
	interval time.Duration
	logger   logging.Logger
	onReset  ResetFunc

	// serializes read-modify-write cycles issued by this process
	mu sync.Mutex
}

// NewStore returns a Store over repo. A non-positive interval falls back to
// common.DefaultResetInterval.
func NewStore(repo state.Repository, clock timex.Clock, interval time.Duration, logger logging.Logger) *Store {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if interval <= 0 {
		interval = common.DefaultResetInterval
	}
	return &Store{
		repo:     repo,
		clock:    clock,
		interval: interval,
		logger:   logger.With("module", "window"),
	}
}

// OnReset registers fn to be told about every persisted reset.
func (s *Store) OnReset(fn ResetFunc) {
	s.onReset = fn
}

// Interval is the reset interval in force.
func (s *Store) Interval() time.Duration {
	return s.interval
}

// EnsureActive returns the window valid for the current instant, persisting
// any initialization, repair or reset it had to perform.
func (s *Store) EnsureActive(ctx context.Context) (*models.Window, error) {
	return s.Mutate(ctx, func(*models.Window) (bool, error) { return false, nil })
}

// materialized records what happened while turning the stored bytes into
// the active window.
type materialized struct {
	window    *models.Window
	dirty     bool
	reason    string
	reset     bool
	discarded int
}

// Mutate materializes the active window, applies fn to it and persists the
// result when either step changed something. An error from fn is returned
// to the caller after any materialization write has been persisted.
func (s *Store) Mutate(ctx context.Context, fn MutateFunc) (*models.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			m      materialized
			result *models.Window
			fnErr  error
		)
		err := s.repo.Update(ctx, func(current []byte) ([]byte, error) {
			m = s.materialize(current)
			result, fnErr = nil, nil

			work := m.window.Snapshot()
			changed, err := fn(work)
			if err != nil {
				fnErr = err
				result = m.window
				changed = false
			} else {
				result = work
			}

			if !m.dirty && !changed {
				return nil, nil
			}
			return encode(result)
		})
		if err == nil {
			s.report(ctx, m)
			return result, fnErr
		}
		if !errors.Is(err, common.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug(ctx, "state changed concurrently, retrying", "attempt", attempt)
	}
	return nil, lastErr
}

// materialize applies the recovery and reset policy to the stored bytes.
func (s *Store) materialize(current []byte) materialized {
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	fresh := func(reason string) materialized {
		return materialized{
			window: &models.Window{LastReset: now, Entries: []models.Entry{}},
			dirty:  true,
			reason: reason,
		}
	}

	if len(current) == 0 {
		return fresh("initialized")
	}

	var doc storedDocument
	if err := json.Unmarshal(current, &doc); err != nil {
		return fresh("corrupt state discarded")
	}

	entries, complete := decodeEntries(doc.Entries)
	m := materialized{window: &models.Window{Entries: entries}}
	if !complete {
		m.dirty = true
		m.reason = "unreadable entries dropped"
	}

	lastReset, ok := decodeInstant(doc.LastReset)
	if !ok {
		lastReset = now
		m.dirty = true
		m.reason = "last_reset corrected"
	}
	m.window.LastReset = lastReset

	if now.Sub(lastReset) >= s.interval {
		discarded := len(m.window.Entries)
		m = fresh("window reset")
		m.reset = true
		m.discarded = discarded
	}
	return m
}

// decodeInstant reads last_reset. Values that are not a parsable instant
// string count as missing.
func decodeInstant(raw json.RawMessage) (time.Time, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return time.Time{}, false
	}
	return timex.ParseInstant(text)
}

// decodeEntries reads the entries one by one. complete is false when the
// value was present but not an array, or when an element was not an object
// and had to be dropped.
func decodeEntries(raw json.RawMessage) ([]models.Entry, bool) {
	entries := []models.Entry{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return entries, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return entries, false
	}

	complete := true
	for _, item := range items {
		var e models.Entry
		if item = bytes.TrimSpace(item); len(item) == 0 || item[0] != '{' {
			complete = false
			continue
		}
		if err := json.Unmarshal(item, &e); err != nil {
			complete = false
			continue
		}
		entries = append(entries, e)
	}
	return entries, complete
}

func (s *Store) report(ctx context.Context, m materialized) {
	if !m.dirty {
		return
	}
	if m.reset {
		s.logger.Info(ctx, m.reason, "last_reset", timex.FormatInstant(m.window.LastReset), "discarded", m.discarded)
		if s.onReset != nil {
			s.onReset(ctx, m.discarded)
		}
		return
	}
	if m.reason == "initialized" {
		s.logger.Info(ctx, m.reason, "last_reset", timex.FormatInstant(m.window.LastReset))
		return
	}
	s.logger.Warn(ctx, m.reason, "last_reset", timex.FormatInstant(m.window.LastReset))
}

func encode(w *models.Window) ([]byte, error) {
	lastReset := timex.FormatInstant(w.LastReset)
	entries := w.Entries
	if entries == nil {
		entries = []models.Entry{}
	}
	return json.Marshal(document{LastReset: &lastReset, Entries: entries})
}
