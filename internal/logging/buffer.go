package logging

import (
	"sync"
	"time"
)

// LogEntry is one record kept in the ring buffer.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

var levelRanks = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// ValidLevel reports whether name is one of the levels stored in entries.
func ValidLevel(name string) bool {
	_, ok := levelRanks[name]
	return ok
}

// AtLeast reports whether the entry is at level or more severe.
// An empty level matches everything.
func (e LogEntry) AtLeast(level string) bool {
	if level == "" {
		return true
	}
	return levelRanks[e.Level] >= levelRanks[level]
}

// RingBuffer keeps the most recent log entries in memory.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewRingBuffer creates a buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Write stores entry, dropping the oldest one when the buffer is full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.next] = entry
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.full = true
	}
}

// ReadAll returns every entry, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Tail(0, "")
}

// Tail returns up to limit of the newest entries at or above minLevel,
// oldest first. A limit of 0 returns all matching entries.
func (rb *RingBuffer) Tail(limit int, minLevel string) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	ordered := rb.entries[:rb.next]
	if rb.full {
		ordered = append(append([]LogEntry{}, rb.entries[rb.next:]...), rb.entries[:rb.next]...)
	}

	var result []LogEntry
	for i := len(ordered) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		if ordered[i].AtLeast(minLevel) {
			result = append(result, ordered[i])
		}
	}

	// collected newest first
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Count returns the number of entries held.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.full {
		return len(rb.entries)
	}
	return rb.next
}
