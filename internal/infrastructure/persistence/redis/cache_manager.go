package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// SummaryCache caches computed analytics payloads keyed by company. A miss
// is not an error; callers fall back to the database or a fresh compute.
type SummaryCache interface {
	Get(ctx context.Context, prefix, companyID string) ([]byte, bool, error)
	Set(ctx context.Context, prefix, companyID string, payload []byte) error
	SetTTL(ctx context.Context, prefix, companyID string, payload []byte, ttl time.Duration) error
	InvalidateCompany(ctx context.Context, companyID string) error
}

// summaryCachePrefixes lists every per-company cache namespace so
// InvalidateCompany can clear them all after an upload.
var summaryCachePrefixes = []string{
	constants.CacheKeyHealth,
	constants.CacheKeyCredit,
	constants.CacheKeyRisk,
	constants.CacheKeyForecast,
	constants.CacheKeyBenchmark,
	constants.CacheKeyDashboard,
}

type summaryCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewSummaryCache wraps a Redis client in the SummaryCache interface.
func NewSummaryCache(conn *Connection, log logger.Logger) SummaryCache {
	return &summaryCache{client: conn.Client(), logger: log.WithComponent("SummaryCache")}
}

func (c *summaryCache) Get(ctx context.Context, prefix, companyID string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, prefix+companyID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		c.logger.Warn(ctx, "Cache read failed",
			logger.String("prefix", prefix),
			logger.String("company_id", companyID),
			logger.String("error", err.Error()),
		)
		return nil, false, apperrors.ErrCache.WithError(err)
	}
	return val, true, nil
}

func (c *summaryCache) Set(ctx context.Context, prefix, companyID string, payload []byte) error {
	return c.SetTTL(ctx, prefix, companyID, payload, constants.SummaryCacheTTL)
}

func (c *summaryCache) SetTTL(ctx context.Context, prefix, companyID string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, prefix+companyID, payload, ttl).Err(); err != nil {
		c.logger.Warn(ctx, "Cache write failed",
			logger.String("prefix", prefix),
			logger.String("company_id", companyID),
			logger.String("error", err.Error()),
		)
		return apperrors.ErrCache.WithError(err)
	}
	return nil
}

func (c *summaryCache) InvalidateCompany(ctx context.Context, companyID string) error {
	keys := make([]string, 0, len(summaryCachePrefixes))
	for _, prefix := range summaryCachePrefixes {
		keys = append(keys, prefix+companyID)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn(ctx, "Cache invalidation failed",
			logger.String("company_id", companyID),
			logger.String("error", err.Error()),
		)
		return apperrors.ErrCache.WithError(err)
	}
	c.logger.Debug(ctx, "Company caches invalidated", logger.String("company_id", companyID))
	return nil
}
