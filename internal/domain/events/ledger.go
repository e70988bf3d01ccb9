// Package events implements event normalization, identity deduplication and
// time-window collection over the simulator's event stream.
package events

import (
	"context"
	"sync"
)

// Default ledger bounds: once the ledger exceeds defaultMax keys it is
// trimmed to the newest defaultKeep, bounding memory over a long match while
// retaining enough history to suppress near-in-time duplicates.
const (
	defaultMax  = 50
	defaultKeep = 25
)

// Ledger records seen identity keys for at-most-once emission. Retention is
// insertion-ordered: trimming discards the oldest keys first.
type Ledger struct {
	mu   sync.Mutex
	seen map[string]struct{}
	keys []string
	max  int
	keep int
}

// LedgerOption applies a configuration option to the Ledger.
type LedgerOption func(*Ledger)

// WithLedgerBounds sets the trim threshold and the retained count.
func WithLedgerBounds(max, keep int) LedgerOption {
	return func(l *Ledger) {
		if keep > 0 && max >= keep {
			l.max = max
			l.keep = keep
		}
	}
}

// NewLedger creates a bounded dedup ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		seen: make(map[string]struct{}),
		max:  defaultMax,
		keep: defaultKeep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SeenAndRecord atomically checks whether key was seen and records it if not.
// Returns true if the key was already seen.
func (l *Ledger) SeenAndRecord(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[key]; ok {
		return true
	}
	l.seen[key] = struct{}{}
	l.keys = append(l.keys, key)
	if len(l.keys) > l.max {
		l.trim()
	}
	return false
}

// trim keeps only the newest keep keys. Caller holds l.mu.
func (l *Ledger) trim() {
	cut := len(l.keys) - l.keep
	for _, k := range l.keys[:cut] {
		delete(l.seen, k)
	}
	l.keys = append(l.keys[:0], l.keys[cut:]...)
}

// Size returns the number of retained keys.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Reset discards all retained keys.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[string]struct{})
	l.keys = l.keys[:0]
}
