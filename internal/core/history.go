package core

// history.go keeps a bounded in-memory record of sync outcomes for the
// status API. The ring holds the most recent entries only; persistence is
// deliberately out of scope.

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds the outcome ring when no capacity is
// configured.
const DefaultHistoryCapacity = 100

// HistoryEntry is one recorded sync outcome.
type HistoryEntry struct {
	Time    time.Time         `json:"time"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// History is a fixed-capacity ring of sync outcomes, oldest evicted
// first. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []HistoryEntry
}

// NewHistory returns a History holding at most capacity entries. A
// non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Append records an entry, evicting the oldest when full.
func (h *History) Append(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
