// Package ratelimit provides distributed request rate limiting backed
// by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

// Result reports the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RedisRateLimiter enforces a per-client fixed window. Counters live in
// Redis so the limit holds across replicas. Redis outages fail open.
type RedisRateLimiter struct {
	client    *redis.Client
	perMinute int
	keyPrefix string
	logger    logger.Logger
}

// NewRedisRateLimiter builds the limiter from rate limit configuration.
func NewRedisRateLimiter(client *redis.Client, cfg *config.RateLimitConfig, log logger.Logger) *RedisRateLimiter {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = constants.RateLimitPerMinute
	}
	return &RedisRateLimiter{
		client:    client,
		perMinute: perMinute,
		keyPrefix: constants.RateLimitKeyPrefix,
		logger:    log.WithComponent("RateLimiter"),
	}
}

// Allow counts one request against the client's current minute window.
func (rl *RedisRateLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	now := time.Now()
	window := now.Truncate(time.Minute)
	key := fmt.Sprintf("%s%s:%d", rl.keyPrefix, clientKey, window.Unix())
	resetAt := window.Add(time.Minute)

	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.Warn(ctx, "Rate limit check failed, allowing request",
			logger.String("client", clientKey),
			logger.String("error", err.Error()),
		)
		return &Result{Allowed: true, Limit: rl.perMinute, Remaining: rl.perMinute, ResetAt: resetAt}, nil
	}

	used := int(count.Val())
	remaining := rl.perMinute - used
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   used <= rl.perMinute,
		Limit:     rl.perMinute,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the client's current window, for tests and support
// tooling.
func (rl *RedisRateLimiter) Reset(ctx context.Context, clientKey string) error {
	window := time.Now().Truncate(time.Minute)
	key := fmt.Sprintf("%s%s:%d", rl.keyPrefix, clientKey, window.Unix())
	return rl.client.Del(ctx, key).Err()
}
