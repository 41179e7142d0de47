// Package redis provides the Redis client used for summary caching and
// request rate limiting.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/logger"
)

// Connection manages the Redis client lifecycle.
type Connection struct {
	client *redis.Client
	config *config.RedisConfig
	logger logger.Logger
}

// NewConnection dials Redis and verifies connectivity with a ping.
func NewConnection(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error(ctx, "Redis ping failed", err, logger.String("addr", cfg.Addr))
		_ = client.Close()
		return nil, err
	}

	log.Info(ctx, "Redis connection established",
		logger.String("addr", cfg.Addr),
		logger.Int("db", cfg.DB),
	)

	return &Connection{client: client, config: cfg, logger: log}, nil
}

// Client returns the underlying Redis client.
func (c *Connection) Client() *redis.Client {
	return c.client
}

// HealthCheck reports connectivity, round-trip latency, and pool stats.
func (c *Connection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	health := make(map[string]interface{})

	start := time.Now()
	err := c.client.Ping(ctx).Err()
	health["connected"] = err == nil
	health["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		health["error"] = err.Error()
		return health, err
	}

	stats := c.client.PoolStats()
	health["pool_hits"] = stats.Hits
	health["pool_misses"] = stats.Misses
	health["pool_timeouts"] = stats.Timeouts
	health["total_conns"] = stats.TotalConns
	health["idle_conns"] = stats.IdleConns

	return health, nil
}

// Close releases the client and its connection pool.
func (c *Connection) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	c.logger.Info(context.Background(), "Redis connection closed")
	return nil
}
