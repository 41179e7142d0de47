package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// AnalyticsHandler serves the computed analytics documents for the
// current company.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) sendDocument(c *gin.Context, fetch func(context.Context, string) (json.RawMessage, error)) {
	payload, err := fetch(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, payload)
}

// Health handles GET /api/financial-health.
func (h *AnalyticsHandler) Health(c *gin.Context) {
	h.sendDocument(c, h.analytics.Health)
}

// Credit handles GET /api/credit-evaluation.
func (h *AnalyticsHandler) Credit(c *gin.Context) {
	h.sendDocument(c, h.analytics.Credit)
}

// Risk handles GET /api/risk-analysis.
func (h *AnalyticsHandler) Risk(c *gin.Context) {
	h.sendDocument(c, h.analytics.Risk)
}

// Benchmark handles GET /api/benchmark.
func (h *AnalyticsHandler) Benchmark(c *gin.Context) {
	h.sendDocument(c, h.analytics.Benchmark)
}

// Forecast handles GET /api/forecast.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	var query dto.ForecastQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	payload, err := h.analytics.Forecast(c.Request.Context(), middleware.CompanyID(c), &query)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, payload)
}

// Metrics handles GET /api/metrics, the financial ratio suite.
func (h *AnalyticsHandler) Metrics(c *gin.Context) {
	report, err := h.analytics.Metrics(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, report)
}

// Dashboard handles GET /api/dashboard/summary.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	summary, err := h.analytics.Dashboard(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, summary)
}
