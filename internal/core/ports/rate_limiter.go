package ports

import (
	"context"
	"time"
)

// RateLimitStore provides low-level atomic operations on per-key request
// counters. Implementations must be safe for concurrent use.
type RateLimitStore interface {
	// Increment adds one request to the key's current window, opening a fresh
	// window when none exists or the previous one has elapsed. Returns the
	// updated count and the window start time.
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (count int, windowStart time.Time, err error)

	// Reset clears the counter for one key immediately; no-op when the key
	// has no active window.
	Reset(ctx context.Context, key string) error

	// ResetAll clears every tracked key.
	ResetAll(ctx context.Context) error
}

// RateLimiter bounds the rate of admitted requests per client key within a
// rolling window. Implementations MUST be safe for concurrent use.
type RateLimiter interface {
	// Admit consumes one request unit for the key. A nil return admits the
	// request; a gatekeeper error rejects it.
	Admit(ctx context.Context, key string) error

	// ResetKey clears one key's counter independent of window elapsation.
	ResetKey(ctx context.Context, key string) error

	// ResetAll clears every tracked key.
	ResetAll(ctx context.Context) error

	// UsedKeys returns the set of keys seen since the last reset.
	UsedKeys() []string
}
