package models

import (
	"bytes"
	"encoding/json"
)

// OptionalText returns nil for an absent or null value, the string for a
// JSON string and the compact JSON text for anything else.
func OptionalText(v json.RawMessage) *string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return &s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return Ptr(string(v))
	}
	return Ptr(buf.String())
}

// Truthy maps false, 0, "", null and empty arrays or objects to false and
// everything else to true.
func Truthy(v json.RawMessage) bool {
	if len(bytes.TrimSpace(v)) == 0 {
		return false
	}
	var x any
	if err := json.Unmarshal(v, &x); err != nil {
		return false
	}
	switch t := x.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
