package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// SettingsHandler serves the company profile, integrations, user
// preferences and the audit trail.
type SettingsHandler struct {
	settings  *service.SettingsService
	companies *service.CompanyService
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService, companies *service.CompanyService) *SettingsHandler {
	return &SettingsHandler{settings: settings, companies: companies}
}

// GetProfile handles GET /api/settings/profile, the current company's
// profile with the caller's role.
func (h *SettingsHandler) GetProfile(c *gin.Context) {
	resp, err := h.companies.Get(c.Request.Context(), middleware.UserID(c), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// UpdateProfile handles PUT /api/settings/profile.
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	company, err := h.companies.Update(c.Request.Context(), middleware.UserID(c), middleware.CompanyID(c), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, company)
}

// ListIntegrations handles GET /api/settings/integrations.
func (h *SettingsHandler) ListIntegrations(c *gin.Context) {
	list, err := h.settings.ListIntegrations(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, list)
}

// CreateIntegration handles POST /api/settings/integrations.
func (h *SettingsHandler) CreateIntegration(c *gin.Context) {
	var req dto.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.settings.CreateIntegration(
		c.Request.Context(),
		middleware.CompanyID(c),
		middleware.UserID(c),
		middleware.Role(c),
		&req,
	)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, resp)
}

// DeleteIntegration handles DELETE /api/settings/integrations/:id.
func (h *SettingsHandler) DeleteIntegration(c *gin.Context) {
	err := h.settings.DeleteIntegration(
		c.Request.Context(),
		middleware.CompanyID(c),
		middleware.UserID(c),
		c.Param("id"),
		middleware.Role(c),
	)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GetPreferences handles GET /api/settings/preferences.
func (h *SettingsHandler) GetPreferences(c *gin.Context) {
	pref, err := h.settings.Preferences(c.Request.Context(), middleware.UserID(c), middleware.CompanyID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, pref)
}

// UpdatePreferences handles PUT /api/settings/preferences.
func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	pref, err := h.settings.UpdatePreferences(c.Request.Context(), middleware.UserID(c), middleware.CompanyID(c), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, pref)
}

// AuditLogs handles GET /api/settings/audit-logs.
func (h *SettingsHandler) AuditLogs(c *gin.Context) {
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.settings.AuditLog(c.Request.Context(), middleware.CompanyID(c), middleware.Role(c), &page)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}
