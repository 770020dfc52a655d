package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// MinQueryLength is the shortest query that triggers suggestions.
	MinQueryLength = 2
	// MaxSuggestions caps the suggestion dropdown.
	MaxSuggestions = 5
	// DebounceDelay is the quiet period before a suggestion request fires.
	DebounceDelay = 300 * time.Millisecond
)

// Normalize trims surrounding whitespace from q.
func Normalize(q string) string {
	return strings.TrimSpace(q)
}

// ShouldSuggest reports whether q is long enough for suggestions.
func ShouldSuggest(q string) bool {
	return len([]rune(Normalize(q))) >= MinQueryLength
}

// Tracker hands out a generation per search. Starting a new search cancels
// the previous one, and only the newest generation is current.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin cancels any in-flight search and returns a context and generation for
// the next one.
func (t *Tracker) Begin(parent context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.gen++
	return ctx, t.gen
}

// IsCurrent reports whether gen belongs to the most recent search.
func (t *Tracker) IsCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

// Cancel aborts the in-flight search, if any, without starting a new one.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}

// Debouncer tracks input changes so a delayed action only fires for the
// latest one.
type Debouncer struct {
	mu  sync.Mutex
	seq uint64
}

// Bump records an input change and returns its sequence number.
func (d *Debouncer) Bump() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return d.seq
}

// Ready reports whether no change happened after seq.
func (d *Debouncer) Ready(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return seq == d.seq
}

// Limit returns at most MaxSuggestions items.
func Limit[T any](items []T) []T {
	if len(items) > MaxSuggestions {
		return items[:MaxSuggestions]
	}
	return items
}
