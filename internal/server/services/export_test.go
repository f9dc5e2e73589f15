package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantErr   error
		wantStart string
		wantEnd   string
	}{
		{name: "open"},
		{name: "zulu", start: "2025-10-06T10:00:00Z", wantStart: "2025-10-06T10:00:00Z"},
		{name: "naive is utc", end: "2025-10-06T10:00", wantEnd: "2025-10-06T10:00:00Z"},
		{name: "offset", start: "2025-10-06T12:00:00+02:00", wantStart: "2025-10-06T10:00:00Z"},
		{name: "equal bounds", start: "2025-10-06", end: "2025-10-06", wantStart: "2025-10-06T00:00:00Z", wantEnd: "2025-10-06T00:00:00Z"},
		{name: "bad start", start: "yesterday", end: "also bad", wantErr: common.ErrInvalidStart},
		{name: "bad end", start: "2025-10-06", end: "13/13/2025", wantErr: common.ErrInvalidEnd},
		{name: "inverted", start: "2025-10-07", end: "2025-10-06", wantErr: common.ErrInvalidRange},
		{name: "blank is open", start: "   ", end: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.start, tt.end)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			if tt.wantStart == "" {
				assert.Nil(t, r.Start)
			} else {
				require.NotNil(t, r.Start)
				assert.Equal(t, tt.wantStart, r.Start.Format(time.RFC3339))
			}
			if tt.wantEnd == "" {
				assert.Nil(t, r.End)
			} else {
				require.NotNil(t, r.End)
				assert.Equal(t, tt.wantEnd, r.End.Format(time.RFC3339))
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	start := time.Date(2025, 10, 6, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 6, 11, 0, 0, 0, time.UTC)
	bounded := Range{Start: &start, End: &end}

	in := models.Entry{Timestamp: "2025-10-06T10:00:00.000000Z"}
	edge := models.Entry{Timestamp: "2025-10-06T11:00:00.000000Z"}
	out := models.Entry{Timestamp: "2025-10-06T11:00:00.000001Z"}
	bad := models.Entry{Timestamp: "garbage"}

	assert.True(t, bounded.Contains(&in))
	assert.True(t, bounded.Contains(&edge), "bounds are inclusive")
	assert.False(t, bounded.Contains(&out))
	assert.False(t, bounded.Contains(&bad))
	assert.False(t, Range{End: &end}.Contains(&bad), "any bound excludes unparsable timestamps")
	assert.True(t, Range{}.Contains(&bad))
}

// plant stores entries directly so tests control their timestamps.
func plant(t *testing.T, f *fixture, entries []models.Entry) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"last_reset": "2025-10-06T00:00:00.000000Z",
		"entries":    entries,
	})
	require.NoError(t, err)
	f.repo.Set(raw)
}

func TestExportService_UnboundedTwoRows(t *testing.T) {
	f := newFixture(t)
	plant(t, f, []models.Entry{
		{ID: "1", Location: models.Ptr("Room A"), Robot: models.Ptr("B-001"), Surrogate: models.Ptr(""), Headset: "1", Timestamp: "2025-10-06T09:00:00.000000Z"},
		{ID: "2", Location: models.Ptr(""), Robot: models.Ptr(""), Surrogate: models.Ptr("TB-002"), Headset: "2", Timestamp: "2025-10-06T10:00:00.000000Z"},
	})

	rep, err := f.export.Export(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Rows)
	assert.Equal(t, "equipment_entries_20251006T120000Z.csv", rep.Filename)
	lines := strings.Split(strings.TrimRight(string(rep.Data), "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"Location,Robot,Surrogate,Headset",
		"Room A,B-001,,1",
		"Unspecified,,TB-002,2",
	}, lines)
}

func TestExportService_FiltersAndOrders(t *testing.T) {
	f := newFixture(t)
	plant(t, f, []models.Entry{
		{ID: "early", Location: models.Ptr("Room B"), Robot: models.Ptr("B-003"), Timestamp: "2025-10-06T07:00:00.000000Z"},
		{ID: "b-robot", Location: models.Ptr("Room B"), Robot: models.Ptr("B-002"), Timestamp: "2025-10-06T09:30:00.000000Z"},
		{ID: "a-none", Location: models.Ptr("room a"), Timestamp: "2025-10-06T09:00:00.000000Z"},
		{ID: "a-full", Location: models.Ptr("Room A"), Robot: models.Ptr("B-001"), Surrogate: models.Ptr("TB-001"), Headset: "3", Timestamp: "2025-10-06T08:00:00.000000Z"},
		{ID: "no-ts", Location: models.Ptr("Room A"), Robot: models.Ptr("B-009")},
	})

	rep, err := f.export.Export(context.Background(), "2025-10-06T08:00:00Z", "2025-10-06T10:00")
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Rows)
	assert.Equal(t,
		"Location,Robot,Surrogate,Headset\r\n"+
			"Room A,B-001,TB-001,3\r\n"+
			"room a,,,\r\n"+
			"Room B,B-002,,\r\n",
		string(rep.Data))
}

func TestExportService_InvalidRangeProducesNothing(t *testing.T) {
	f := newFixture(t)

	rep, err := f.export.Export(context.Background(), "2025-10-07", "2025-10-06")
	require.ErrorIs(t, err, common.ErrInvalidRange)
	assert.Nil(t, rep)

	_, err = f.repo.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound, "storage untouched on validation errors")
}

func TestExportService_InvalidBounds(t *testing.T) {
	f := newFixture(t)

	_, err := f.export.Export(context.Background(), "not-a-date", "")
	require.ErrorIs(t, err, common.ErrInvalidStart)
	assert.True(t, common.IsValidation(err))

	_, err = f.export.Export(context.Background(), "", "not-a-date")
	require.ErrorIs(t, err, common.ErrInvalidEnd)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "equipment_entries_20250102T030405Z.csv",
		Filename(time.Date(2025, 1, 2, 4, 4, 5, 0, time.FixedZone("CET", 3600))))
}
