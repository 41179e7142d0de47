package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// AuthHandler serves registration, login and the caller profile.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}
