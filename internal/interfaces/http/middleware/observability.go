package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/pkg/logger"
)

// Observability starts a trace span per request, stamps a trace ID on
// the request context and response, and records request metrics and an
// access log line on completion.
func Observability(tracing *monitoring.TracingManager, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	accessLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}

		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()

		traceID := uuid.NewString()
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}
		ctx = contextWithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", traceID)

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		metrics.RecordHTTPRequest(c.Request.Method, route, status, duration)

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("duration", duration),
			logger.String("client_ip", c.ClientIP()),
		}
		if status >= 500 {
			accessLog.Warn(c.Request.Context(), "Request failed", fields...)
		} else {
			accessLog.Info(c.Request.Context(), "Request completed", fields...)
		}
	}
}
