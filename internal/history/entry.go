// Package history holds the calculation history log and the stores that
// persist it between runs.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Capacity is the maximum number of entries kept in a Log.
const Capacity = 50

// Entry is one completed calculation. Entries are never mutated after creation.
type Entry struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  int64  `json:"timestamp"` // epoch milliseconds
}

// NewEntry stamps a calculation with a fresh id and the given creation time.
func NewEntry(expression, result string, at time.Time) Entry {
	return Entry{
		ID:         uuid.New().String(),
		Expression: expression,
		Result:     result,
		Timestamp:  at.UnixMilli(),
	}
}

// Log is an ordered, most-recent-first list of entries capped at Capacity.
// It is not safe for concurrent use; callers serialise access.
type Log struct {
	entries []Entry
}

// NewLog builds a log from entries already in most-recent-first order.
// Anything beyond Capacity is dropped from the back.
func NewLog(entries []Entry) *Log {
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return &Log{entries: out}
}

// Prepend inserts e at the front and evicts the oldest entries past Capacity.
func (l *Log) Prepend(e Entry) {
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}
}

// Find looks an entry up by id.
func (l *Log) Find(id string) (Entry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = []Entry{}
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
