package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// CompanyHandler serves company CRUD, switching and invites. These
// routes take the company from the URL or the caller's default, not
// from the tenant header.
type CompanyHandler struct {
	companies *service.CompanyService
}

// NewCompanyHandler creates a CompanyHandler.
func NewCompanyHandler(companies *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// Create handles POST /api/company.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.companies.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, resp)
}

// List handles GET /api/company.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, companies)
}

// Get handles GET /api/company/:id.
func (h *CompanyHandler) Get(c *gin.Context) {
	resp, err := h.companies.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Update handles PUT /api/company/:id.
func (h *CompanyHandler) Update(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	company, err := h.companies.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, company)
}

// Switch handles POST /api/company/switch.
func (h *CompanyHandler) Switch(c *gin.Context) {
	var req dto.SwitchCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	company, err := h.companies.Switch(c.Request.Context(), middleware.UserID(c), req.CompanyID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, company)
}

// Invite handles POST /api/settings/users/invite, scoped to the
// current company.
func (h *CompanyHandler) Invite(c *gin.Context) {
	var req dto.InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	membership, err := h.companies.Invite(c.Request.Context(), middleware.UserID(c), middleware.CompanyID(c), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, membership)
}
