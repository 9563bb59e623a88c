package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitRedisRepository implements rate limiting counter storage with
// Redis, for deployments that need a quota shared across instances. Windows
// are wall-clock aligned buckets; stale buckets expire via TTL.
type RateLimitRedisRepository struct {
	r         redis.Cmdable
	keyPrefix string
}

func NewRateLimitRedisRepository(r redis.Cmdable, keyPrefix string) *RateLimitRedisRepository {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:client"
	}
	return &RateLimitRedisRepository{r: r, keyPrefix: keyPrefix}
}

func (repo *RateLimitRedisRepository) bucketKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", repo.keyPrefix, key, windowStart.Unix())
}

func (repo *RateLimitRedisRepository) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	windowStart := now.Truncate(window)
	bucket := repo.bucketKey(key, windowStart)
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window*2) // retain overlap window
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, windowStart, err
	}
	return int(incr.Val()), windowStart, nil
}

func (repo *RateLimitRedisRepository) Reset(ctx context.Context, key string) error {
	keys, err := repo.r.Keys(ctx, fmt.Sprintf("%s:%s:*", repo.keyPrefix, key)).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return repo.r.Del(ctx, keys...).Err()
}

func (repo *RateLimitRedisRepository) ResetAll(ctx context.Context) error {
	keys, err := repo.r.Keys(ctx, repo.keyPrefix+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return repo.r.Del(ctx, keys...).Err()
}
