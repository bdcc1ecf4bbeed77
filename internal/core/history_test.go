package core

import (
	"fmt"
	"testing"
	"time"
)

func TestHistoryEvictsOldestBeyondCapacity(t *testing.T) {
	h := NewHistory(DefaultHistoryCapacity)
	for i := 0; i < 150; i++ {
		h.Append(HistoryEntry{Time: time.Now(), Message: fmt.Sprintf("run %d", i)})
	}

	if got := h.Len(); got != DefaultHistoryCapacity {
		t.Fatalf("Len() = %d, want %d", got, DefaultHistoryCapacity)
	}
	entries := h.Entries()
	if got, want := entries[0].Message, "run 50"; got != want {
		t.Errorf("oldest entry = %q, want %q", got, want)
	}
	if got, want := entries[len(entries)-1].Message, "run 149"; got != want {
		t.Errorf("newest entry = %q, want %q", got, want)
	}
}

func TestHistoryDefaultsCapacity(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultHistoryCapacity+1; i++ {
		h.Append(HistoryEntry{Message: fmt.Sprintf("run %d", i)})
	}
	if got := h.Len(); got != DefaultHistoryCapacity {
		t.Errorf("Len() = %d, want %d", got, DefaultHistoryCapacity)
	}
}

func TestHistoryEntriesReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(HistoryEntry{Message: "original"})

	entries := h.Entries()
	entries[0].Message = "mutated"

	if got := h.Entries()[0].Message; got != "original" {
		t.Errorf("stored entry = %q, want %q", got, "original")
	}
}
