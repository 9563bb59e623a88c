package repositories

import (
	"context"
	"sync"
	"time"
)

type rateWindow struct {
	count int
	start time.Time
}

// RateLimitMemoryRepository keeps per-key window counters in process memory.
// Windows open on the first request from a key and expire lazily: a key that
// sends nothing for a full window duration starts fresh at full quota.
type RateLimitMemoryRepository struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewRateLimitMemoryRepository() *RateLimitMemoryRepository {
	return &RateLimitMemoryRepository{windows: make(map[string]*rateWindow)}
}

func (r *RateLimitMemoryRepository) Increment(_ context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if !ok || now.Sub(w.start) >= window {
		w = &rateWindow{count: 0, start: now}
		r.windows[key] = w
	}
	w.count++
	return w.count, w.start, nil
}

func (r *RateLimitMemoryRepository) Reset(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, key)
	return nil
}

func (r *RateLimitMemoryRepository) ResetAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = make(map[string]*rateWindow)
	return nil
}
