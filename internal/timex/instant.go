package timex

import (
	"strings"
	"time"
)

// InstantLayout is the fixed-width UTC form used for every timestamp the
// system generates, so text and chronological order agree.
const InstantLayout = "2006-01-02T15:04:05.000000Z"

// CompactLayout is the filename-friendly UTC form, e.g. 20251019T134501Z.
const CompactLayout = "20060102T150405Z"

// naiveLayouts are tried after RFC 3339 fails; values parsed with them
// carry no offset and are taken as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// offsetLayouts cover ISO-8601 forms with an explicit offset that
// time.RFC3339Nano rejects (missing seconds, space separator).
var offsetLayouts = []string{
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
}

// FormatInstant renders t in InstantLayout.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// FormatCompact renders t in CompactLayout.
func FormatCompact(t time.Time) string {
	return t.UTC().Format(CompactLayout)
}

// ParseInstant parses ISO-8601 text. A trailing "Z" means UTC and naive
// values are assumed UTC. The result is always in UTC.
func ParseInstant(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
