package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/ratelimit"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// RateLimit enforces the per-IP request budget. Denied requests get a
// 429 with Retry-After; Redis trouble fails open inside the limiter.
func RateLimit(limiter *ratelimit.RedisRateLimiter, cfg *config.RateLimitConfig, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil || result == nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			metrics.RecordRateLimitHit()
			dto.AbortError(c, apperrors.ErrRateLimited.WithDescription("request budget exhausted, retry in %ds", retryAfter))
			return
		}
		c.Next()
	}
}
