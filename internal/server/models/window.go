package models

import "time"

// Window is the materialized state of the current rolling allocation
// window: when it started and the entries recorded since.
type Window struct {
	LastReset time.Time
	Entries   []Entry
}

// Find returns the index of the entry with the given id, or -1.
func (w *Window) Find(id string) int {
	for i := range w.Entries {
		if w.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the entry with the given id, keeping the order of the
// rest. It reports whether an entry was removed.
func (w *Window) Remove(id string) bool {
	i := w.Find(id)
	if i < 0 {
		return false
	}
	w.Entries = append(w.Entries[:i], w.Entries[i+1:]...)
	return true
}

// Snapshot returns a copy that does not share the entries slice.
func (w *Window) Snapshot() *Window {
	entries := make([]Entry, len(w.Entries))
	copy(entries, w.Entries)
	return &Window{LastReset: w.LastReset, Entries: entries}
}
