package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/pkg/constants"
)

// setContextValue stores a value on the request context so downstream
// handlers, services and the logger all see it.
func setContextValue(c *gin.Context, key constants.ContextKey, value string) {
	ctx := context.WithValue(c.Request.Context(), key, value)
	c.Request = c.Request.WithContext(ctx)
}

func contextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
}

func contextValue(c *gin.Context, key constants.ContextKey) string {
	if v, ok := c.Request.Context().Value(key).(string); ok {
		return v
	}
	return ""
}

// UserID returns the authenticated user's ID, empty when anonymous.
func UserID(c *gin.Context) string {
	return contextValue(c, constants.ContextKeyUserID)
}

// CompanyID returns the tenant resolved from the X-Company-ID header.
func CompanyID(c *gin.Context) string {
	return contextValue(c, constants.ContextKeyCompanyID)
}

// Role returns the caller's role in the current company.
func Role(c *gin.Context) constants.Role {
	return constants.Role(contextValue(c, constants.ContextKeyRole))
}
