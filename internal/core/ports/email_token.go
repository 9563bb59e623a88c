package ports

import (
	"context"
	"time"
)

// EmailTokenRepository stores short-lived email verification tokens keyed by
// the token value itself.
type EmailTokenRepository interface {
	Store(ctx context.Context, token string, userID int64, ttl time.Duration) error
	// Consume returns the user id bound to the token and invalidates it.
	Consume(ctx context.Context, token string) (int64, error)
}
