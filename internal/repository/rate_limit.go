//go:generate go run go.uber.org/mock/mockgen -source=rate_limit.go -destination=../mocks/mock_rate_limit_repository.go -package=mocks

package repository

import (
	"context"
	"time"

	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "batepapo:ratelimit:"

// RateLimitRepository keeps fixed-window request counters.
type RateLimitRepository interface {
	// Increment counts one hit for key and returns the count in the current
	// window together with the time left before it resets.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = rateLimitKeyPrefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// NX keeps the window anchored at the first hit
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, 0, apperrors.Storage("rate limit", err)
	}

	return incr.Val(), ttl.Val(), nil
}
