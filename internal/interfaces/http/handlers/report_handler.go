package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// ReportHandler serves the versioned report snapshots.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List handles GET /api/reports.
func (h *ReportHandler) List(c *gin.Context) {
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.reports.List(c.Request.Context(), middleware.CompanyID(c), &page)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Get handles GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), middleware.CompanyID(c), c.Param("id"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, report)
}
