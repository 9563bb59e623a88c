package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
)

// RejectedMessage is the fixed client-facing message for rate-limited requests.
const RejectedMessage = "Too many requests, please try again later"

// UnknownClientKey buckets requests whose client address cannot be determined.
// Such requests still participate in limiting rather than bypassing it.
const UnknownClientKey = "unknown"

// RateLimiterService bounds admitted requests per client key within a fixed
// wall-clock window. Counts reset exactly at the window boundary; they are not
// continuously decayed.
type RateLimiterService struct {
	store  ports.RateLimitStore
	window time.Duration
	max    int
	clock  func() time.Time
	logger *logrus.Logger

	mu   sync.Mutex
	used map[string]struct{}
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	Window      time.Duration
	MaxRequests int
	// Clock overrides time.Now, used by tests to step window boundaries.
	Clock func() time.Time
}

func NewRateLimiterService(store ports.RateLimitStore, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	w := time.Minute
	max := 10
	clock := time.Now
	if cfg != nil {
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.MaxRequests > 0 {
			max = cfg.MaxRequests
		}
		if cfg.Clock != nil {
			clock = cfg.Clock
		}
	}
	return &RateLimiterService{
		store:  store,
		window: w,
		max:    max,
		clock:  clock,
		logger: logger,
		used:   make(map[string]struct{}),
	}
}

// Admit consumes one request unit for the key. Returns nil when admitted and
// a TooManyRequests gatekeeper error when the window quota is exhausted.
func (s *RateLimiterService) Admit(ctx context.Context, key string) error {
	if key == "" {
		key = UnknownClientKey
	}

	s.mu.Lock()
	s.used[key] = struct{}{}
	s.mu.Unlock()

	count, windowStart, err := s.store.Increment(ctx, key, s.window, s.clock())
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"client_key": key}).WithError(err).Warn("rate limiter: store error; allowing request (fail-open)")
		}
		return nil
	}

	if count > s.max {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"client_key": key, "count": count, "max": s.max, "window_start": windowStart}).Debug("rate limiter: request rejected")
		}
		return gate.TooManyRequests(RejectedMessage)
	}
	return nil
}

// ResetKey clears the counter for one key immediately, independent of window
// elapsation. No-op when the key has no active window.
func (s *RateLimiterService) ResetKey(ctx context.Context, key string) error {
	if key == "" {
		key = UnknownClientKey
	}
	s.mu.Lock()
	delete(s.used, key)
	s.mu.Unlock()
	return s.store.Reset(ctx, key)
}

// ResetAll clears every tracked key.
func (s *RateLimiterService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	s.used = make(map[string]struct{})
	s.mu.Unlock()
	return s.store.ResetAll(ctx)
}

// UsedKeys returns the keys seen since the last reset, sorted for stable
// observability output.
func (s *RateLimiterService) UsedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.used))
	for k := range s.used {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
