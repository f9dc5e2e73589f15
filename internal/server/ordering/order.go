package ordering

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
)

// NormalizeLocation returns the trimmed location, or common.UnspecifiedLocation
// when it is absent or blank.
func NormalizeLocation(location *string) string {
	l := strings.TrimSpace(models.Deref(location))
	if l == "" {
		return common.UnspecifiedLocation
	}
	return l
}

// sortKey is computed once per entry.
type sortKey struct {
	location string
	category Category
	instant  time.Time
	valid    bool
}

func keyOf(e *models.Entry) sortKey {
	t, ok := e.Instant()
	return sortKey{
		location: strings.ToLower(NormalizeLocation(e.Location)),
		category: Categorize(e),
		instant:  t,
		valid:    ok,
	}
}

// compareKeys orders by location (case-insensitive), then category, then
// instant descending. Entries without a valid instant come last in their
// group.
func compareKeys(a, b sortKey) int {
	if c := strings.Compare(a.location, b.location); c != 0 {
		return c
	}
	if c := cmp.Compare(a.category, b.category); c != 0 {
		return c
	}
	switch {
	case a.valid && !b.valid:
		return -1
	case !a.valid && b.valid:
		return 1
	case a.valid && b.valid:
		return b.instant.Compare(a.instant)
	}
	return 0
}

// Sort returns the entries in display/export order without modifying the
// input. Ties on the full key fall back to the entry id so the order is
// total.
func Sort(entries []models.Entry) []models.Entry {
	type keyed struct {
		key   sortKey
		entry models.Entry
	}
	items := make([]keyed, len(entries))
	for i := range entries {
		items[i] = keyed{key: keyOf(&entries[i]), entry: entries[i]}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if c := compareKeys(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.entry.ID, b.entry.ID)
	})

	out := make([]models.Entry, len(items))
	for i := range items {
		out[i] = items[i].entry
	}
	return out
}

// ByNewest returns the entries sorted by parsed timestamp, most recent
// first. Entries without a valid timestamp come last.
func ByNewest(entries []models.Entry) []models.Entry {
	out := slices.Clone(entries)
	if out == nil {
		out = []models.Entry{}
	}
	slices.SortStableFunc(out, func(a, b models.Entry) int {
		ta, okA := a.Instant()
		tb, okB := b.Instant()
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case okA && okB:
			return tb.Compare(ta)
		}
		return 0
	})
	return out
}
