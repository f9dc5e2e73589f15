package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/server/ordering"
	"github.com/dmitrijs2005/equiptracker/internal/server/report"
	"github.com/dmitrijs2005/equiptracker/internal/server/window"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// Range is an optional, inclusive time range. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether either bound is set.
func (r Range) Bounded() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether e falls within r. An entry without a valid
// timestamp is only contained by an unbounded range.
func (r Range) Contains(e *models.Entry) bool {
	if !r.Bounded() {
		return true
	}
	t, ok := e.Instant()
	if !ok {
		return false
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// ParseRange parses the raw bounds. Blank input means no bound.
func ParseRange(startRaw, endRaw string) (Range, error) {
	var r Range
	if strings.TrimSpace(startRaw) != "" {
		t, ok := timex.ParseInstant(startRaw)
		if !ok {
			return Range{}, common.ErrInvalidStart
		}
		r.Start = &t
	}
	if strings.TrimSpace(endRaw) != "" {
		t, ok := timex.ParseInstant(endRaw)
		if !ok {
			return Range{}, common.ErrInvalidEnd
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return Range{}, common.ErrInvalidRange
	}
	return r, nil
}

// Report is a rendered export.
type Report struct {
	Filename string
	Data     []byte
	Rows     int
}

// ExportService renders the active window as a filtered, ordered CSV.
type ExportService struct {
	store  *window.Store
	clock  timex.Clock
	logger logging.Logger
}

// NewExportService constructs an ExportService over store.
func NewExportService(store *window.Store, clock timex.Clock, logger logging.Logger) *ExportService {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &ExportService{
		store:  store,
		clock:  clock,
		logger: logger.With("module", "export"),
	}
}

// Filename suggests the attachment name for an export made at t.
func Filename(t time.Time) string {
	return "equipment_entries_" + timex.FormatCompact(t) + ".csv"
}

// Export validates the range, then filters, orders and serializes the
// entries of the active window. Range errors are returned before storage
// is touched.
func (s *ExportService) Export(ctx context.Context, startRaw, endRaw string) (*Report, error) {
	r, err := ParseRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	w, err := s.store.EnsureActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	selected := make([]models.Entry, 0, len(w.Entries))
	for i := range w.Entries {
		if r.Contains(&w.Entries[i]) {
			selected = append(selected, w.Entries[i])
		}
	}
	ordered := ordering.Sort(selected)

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, ordered); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	rep := &Report{
		Filename: Filename(s.clock.Now()),
		Data:     buf.Bytes(),
		Rows:     len(ordered),
	}
	s.logger.Info(ctx, "export rendered", "rows", rep.Rows, "bounded", r.Bounded())
	return rep, nil
}
