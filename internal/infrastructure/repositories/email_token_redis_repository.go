package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
)

const emailTokenKeyPrefix = "verify:email:"

// EmailTokenRedisRepository stores one-shot email verification tokens in
// Redis with a TTL matching their validity window.
type EmailTokenRedisRepository struct {
	r      redis.Cmdable
	logger *logrus.Logger
}

func NewEmailTokenRedisRepository(r redis.Cmdable, logger *logrus.Logger) *EmailTokenRedisRepository {
	return &EmailTokenRedisRepository{r: r, logger: logger}
}

func (repo *EmailTokenRedisRepository) Store(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	key := emailTokenKeyPrefix + token
	if err := repo.r.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		if repo.logger != nil {
			repo.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("redis: failed to store email token")
		}
		return fmt.Errorf("failed to store email token: %w", err)
	}
	return nil
}

// Consume returns the bound user id and deletes the token so it cannot be
// replayed.
func (repo *EmailTokenRedisRepository) Consume(ctx context.Context, token string) (int64, error) {
	key := emailTokenKeyPrefix + token
	val, err := repo.r.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, user.ErrVerificationToken
		}
		if repo.logger != nil {
			repo.logger.WithError(err).Error("redis: failed to consume email token")
		}
		return 0, fmt.Errorf("failed to consume email token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, user.ErrVerificationToken
	}
	return userID, nil
}
