// Package inflight tracks refresh jobs that have been accepted but not yet
// completed, so duplicate requests for the same target can be rejected.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// defaultMaxSize bounds how many keys may be in flight at once.
const defaultMaxSize = 1024

// Tracker records keys between Begin and End.
type Tracker interface {
	// Begin atomically records key as in flight. It returns false when the
	// key is already in flight or the tracker is full.
	Begin(ctx context.Context, key string) bool

	// End removes key, allowing a new refresh for the same target.
	End(ctx context.Context, key string)

	// Len returns the number of keys currently in flight.
	Len() int64
}

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize bounds the number of concurrent keys. Zero or negative means
// unbounded.
func WithMaxSize(n int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = n
	}
}

// inMemoryTracker implements Tracker with a mutex-guarded map.
type inMemoryTracker struct {
	mu      sync.Mutex
	active  map[string]time.Time // key -> time Begin was called
	maxSize int
	size    atomic.Int64
}

// NewTracker creates an in-memory tracker.
func NewTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		active:  make(map[string]time.Time),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *inMemoryTracker) Begin(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.active[key]; exists {
		return false
	}
	if t.maxSize > 0 && len(t.active) >= t.maxSize {
		return false
	}

	t.active[key] = time.Now()
	t.size.Add(1)
	return true
}

func (t *inMemoryTracker) End(_ context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.active[key]; exists {
		delete(t.active, key)
		t.size.Add(-1)
	}
}

func (t *inMemoryTracker) Len() int64 {
	return t.size.Load()
}
