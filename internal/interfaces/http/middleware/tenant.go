package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// NewMembershipCache builds the in-process role cache used by Tenant.
func NewMembershipCache() *gocache.Cache {
	return gocache.New(constants.MembershipCacheTTL, 2*constants.MembershipCacheTTL)
}

// Tenant resolves the X-Company-ID header, confirms the caller belongs
// to that company and stores tenant and role on the request context.
// Memberships are cached in-process for a couple of minutes, so role
// changes take a moment to propagate.
func Tenant(companies repository.CompanyRepository, cache *gocache.Cache, log logger.Logger) gin.HandlerFunc {
	tenantLog := log.WithComponent("tenant")
	return func(c *gin.Context) {
		companyID := c.GetHeader(constants.HeaderCompanyID)
		if companyID == "" {
			dto.AbortError(c, apperrors.ErrInvalidCompanyHeader(""))
			return
		}
		if _, err := uuid.Parse(companyID); err != nil {
			dto.AbortError(c, apperrors.ErrInvalidCompanyHeader(companyID))
			return
		}

		userID := UserID(c)
		cacheKey := constants.CacheKeyMembership + userID + ":" + companyID

		role, ok := cachedRole(cache, cacheKey)
		if !ok {
			membership, err := companies.FindMembership(c.Request.Context(), userID, companyID)
			if err != nil {
				tenantLog.Warn(c.Request.Context(), "Membership check failed",
					logger.String("user_id", userID),
					logger.String("company_id", companyID),
					logger.String("error", err.Error()),
				)
				dto.AbortError(c, err)
				return
			}
			role = membership.Role
			cache.SetDefault(cacheKey, role)
		}

		setContextValue(c, constants.ContextKeyCompanyID, companyID)
		setContextValue(c, constants.ContextKeyRole, string(role))
		c.Next()
	}
}

func cachedRole(cache *gocache.Cache, key string) (constants.Role, bool) {
	v, ok := cache.Get(key)
	if !ok {
		return "", false
	}
	role, ok := v.(constants.Role)
	return role, ok
}
