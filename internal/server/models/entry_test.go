package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Presence(t *testing.T) {
	e := Entry{Robot: Ptr("  "), Surrogate: nil, Headset: " 7 "}
	assert.False(t, e.HasRobot())
	assert.False(t, e.HasSurrogate())
	assert.True(t, e.HasHeadset())

	e = Entry{Robot: Ptr("B-001"), Surrogate: Ptr("TB-002"), Headset: ""}
	assert.True(t, e.HasRobot())
	assert.True(t, e.HasSurrogate())
	assert.False(t, e.HasHeadset())
}

func TestEntry_Instant(t *testing.T) {
	e := Entry{Timestamp: "2025-10-19T08:00:00.000000Z"}
	got, ok := e.Instant()
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC)))

	_, ok = (&Entry{Timestamp: "later"}).Instant()
	assert.False(t, ok)
	_, ok = (&Entry{}).Instant()
	assert.False(t, ok)
}

func TestEntry_JSONKeepsAbsentFields(t *testing.T) {
	b, err := json.Marshal(Entry{ID: "e1", Name: "Ann", Location: nil, Robot: Ptr("B-001")})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "location")
	assert.Nil(t, raw["location"])
	assert.Equal(t, "B-001", raw["robot"])
	assert.Equal(t, false, raw["headsetOnSurrogate"])
}

func TestWindow_RemoveAndFind(t *testing.T) {
	w := &Window{Entries: []Entry{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	assert.Equal(t, 1, w.Find("b"))
	assert.True(t, w.Remove("b"))
	assert.Equal(t, []Entry{{ID: "a"}, {ID: "c"}}, w.Entries)
	assert.False(t, w.Remove("zzz"))
	assert.Len(t, w.Entries, 2)
}

func TestWindow_SnapshotIsIndependent(t *testing.T) {
	w := &Window{Entries: []Entry{{ID: "a"}}}
	s := w.Snapshot()
	s.Entries[0].ID = "changed"
	assert.Equal(t, "a", w.Entries[0].ID)
}

func TestEntry_UnmarshalLooseTypes(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"id":"a","name":"Ann","location":5,"robot":null,"headset":3,"headsetOnSurrogate":"yes","timestamp":"2025-10-19T08:00:00.000000Z"}`), &e)
	require.NoError(t, err)

	assert.Equal(t, "a", e.ID)
	assert.Equal(t, "Ann", e.Name)
	require.NotNil(t, e.Location)
	assert.Equal(t, "5", *e.Location)
	assert.Nil(t, e.Robot)
	assert.Nil(t, e.Surrogate)
	assert.Equal(t, "3", e.Headset)
	assert.True(t, e.HeadsetOnSurrogate)
	assert.Equal(t, "2025-10-19T08:00:00.000000Z", e.Timestamp)

	assert.Error(t, json.Unmarshal([]byte(`42`), &e))
}
