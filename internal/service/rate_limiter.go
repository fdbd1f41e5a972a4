package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/account-linker/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

// Allow records a request under key using a sliding window log.
// When the limit is reached it returns an ErrRateLimited error and how long to wait.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error) {
	now := time.Now()
	redisKey := rateLimitKey(key)
	windowStart := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	var count *redis.IntCmd
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "0", windowStart)
		count = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	if count.Val() >= int64(limit) {
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			retryAfter := window - now.Sub(time.UnixMilli(int64(oldest[0].Score)))
			return retryAfter, fmt.Errorf("%w, try again in %v", ErrRateLimited, retryAfter.Round(time.Second))
		}
		return window, ErrRateLimited
	}

	_, err = r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: uuid.New().String(),
		})
		pipe.Expire(ctx, redisKey, window+time.Minute)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add entry: %w", err)
	}

	return 0, nil
}

// Remaining returns the number of requests still allowed in the current window
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	windowStart := strconv.FormatInt(time.Now().Add(-window).UnixMilli(), 10)

	count, err := r.redis.Client.ZCount(ctx, rateLimitKey(key), "("+windowStart, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return max(limit-int(count), 0), nil
}
