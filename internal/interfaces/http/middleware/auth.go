package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// authExemptPaths may be called without a bearer token.
var authExemptPaths = map[string]struct{}{
	"/api/auth/login":    {},
	"/api/auth/register": {},
}

// extractBearer pulls the token out of an Authorization header.
func extractBearer(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth verifies the bearer token and stores the caller's identity on
// the request context.
func Auth(tokens *crypto.TokenManager, log logger.Logger) gin.HandlerFunc {
	authLog := log.WithComponent("auth")
	return func(c *gin.Context) {
		if _, exempt := authExemptPaths[c.Request.URL.Path]; exempt {
			c.Next()
			return
		}

		tokenString := extractBearer(c.GetHeader("Authorization"))
		if tokenString == "" {
			dto.AbortError(c, apperrors.ErrUnauthorized.WithDescription("missing bearer token"))
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), tokenString)
		if err != nil {
			authLog.Warn(c.Request.Context(), "Token rejected",
				logger.String("client_ip", c.ClientIP()),
				logger.String("error", err.Error()),
			)
			dto.AbortError(c, err)
			return
		}

		setContextValue(c, constants.ContextKeyUserID, claims.Subject)
		c.Next()
	}
}
