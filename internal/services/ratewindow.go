package services

import (
	"sync"
	"time"
)

// RateWindow is process-wide submission throttling keyed by partner id,
// separate from the IP-keyed middleware limiter. An entry is created on a
// partner's first submission and reset once its window elapses; expired
// entries are dropped opportunistically on later calls.
type RateWindow struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*windowEntry
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func NewRateWindow(max int, window time.Duration) *RateWindow {
	return &RateWindow{max: max, window: window, entries: map[string]*windowEntry{}}
}

// Allow records one submission attempt for the key and reports whether it
// fits in the current window.
func (w *RateWindow) Allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entries[key]
	if !ok || !now.Before(e.resetAt) {
		w.entries[key] = &windowEntry{count: 1, resetAt: now.Add(w.window)}
		w.sweep(now)
		return true
	}
	if e.count >= w.max {
		return false
	}
	e.count++
	return true
}

// Remaining reports how many attempts are left in the key's current window.
func (w *RateWindow) Remaining(key string, now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[key]
	if !ok || !now.Before(e.resetAt) {
		return w.max
	}
	return w.max - e.count
}

// sweep drops expired entries. Caller holds the lock.
func (w *RateWindow) sweep(now time.Time) {
	for k, e := range w.entries {
		if !now.Before(e.resetAt) {
			delete(w.entries, k)
		}
	}
}
