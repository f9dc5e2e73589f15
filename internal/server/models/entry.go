// Package models defines the allocation records shared by the window store,
// services and transports.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// Entry allocates equipment to a location on behalf of a person.
//
// Location, Robot and Surrogate may be absent (nil); absence is kept as is
// and only normalized when entries are ordered or exported. JSON names are
// the persisted and wire names and must not change.
type Entry struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Location           *string `json:"location"`
	Robot              *string `json:"robot"`
	Surrogate          *string `json:"surrogate"`
	Headset            string  `json:"headset"`
	HeadsetOnSurrogate bool    `json:"headsetOnSurrogate"`
	Timestamp          string  `json:"timestamp"`
}

// UnmarshalJSON reads an entry with the same loose typing applied on
// create, so stored values of an unexpected JSON type are kept as text
// instead of failing the decode. null leaves e unchanged.
func (e *Entry) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.New("entry is not a JSON object")
	}
	*e = Entry{
		ID:                 Deref(OptionalText(raw["id"])),
		Name:               Deref(OptionalText(raw["name"])),
		Location:           OptionalText(raw["location"]),
		Robot:              OptionalText(raw["robot"]),
		Surrogate:          OptionalText(raw["surrogate"]),
		Headset:            Deref(OptionalText(raw["headset"])),
		HeadsetOnSurrogate: Truthy(raw["headsetOnSurrogate"]),
		Timestamp:          Deref(OptionalText(raw["timestamp"])),
	}
	return nil
}

// Instant parses Timestamp. ok is false for absent or unparsable values.
func (e *Entry) Instant() (time.Time, bool) {
	return timex.ParseInstant(e.Timestamp)
}

// HasRobot reports whether a robot is assigned.
func (e *Entry) HasRobot() bool {
	return strings.TrimSpace(Deref(e.Robot)) != ""
}

// HasSurrogate reports whether a surrogate is assigned.
func (e *Entry) HasSurrogate() bool {
	return strings.TrimSpace(Deref(e.Surrogate)) != ""
}

// HasHeadset reports whether a headset is assigned.
func (e *Entry) HasHeadset() bool {
	return strings.TrimSpace(e.Headset) != ""
}

// NewEntry carries the caller-supplied fields of an entry to be created.
// ID and Timestamp are always assigned by the system.
type NewEntry struct {
	Name               string
	Location           *string
	Robot              *string
	Surrogate          *string
	Headset            string
	HeadsetOnSurrogate bool
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}
