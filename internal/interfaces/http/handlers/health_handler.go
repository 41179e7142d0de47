package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/finhealth/finhealth/pkg/logger"
)

// DependencyChecker reports the health of one backing service.
type DependencyChecker interface {
	HealthCheck(ctx context.Context) (map[string]interface{}, error)
}

// HealthHandler probes every dependency in parallel and reports
// aggregate service health.
type HealthHandler struct {
	checkers map[string]DependencyChecker
	logger   logger.Logger
}

// NewHealthHandler creates a HealthHandler over the named checkers.
func NewHealthHandler(checkers map[string]DependencyChecker, log logger.Logger) *HealthHandler {
	return &HealthHandler{checkers: checkers, logger: log.WithComponent("HealthHandler")}
}

// Check handles GET /health. Degraded dependencies turn the endpoint
// into a 503 so load balancers stop routing here.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	details := make(map[string]interface{}, len(h.checkers))
	healthy := true

	g, gctx := errgroup.WithContext(ctx)
	for name, checker := range h.checkers {
		name, checker := name, checker
		g.Go(func() error {
			stats, err := checker.HealthCheck(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				healthy = false
				details[name] = map[string]interface{}{"status": "down", "error": err.Error()}
				return nil
			}
			details[name] = stats
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
		h.logger.Warn(c.Request.Context(), "Health check degraded")
	}
	c.JSON(status, gin.H{
		"status":       state,
		"timestamp":    time.Now().UTC(),
		"dependencies": details,
	})
}
