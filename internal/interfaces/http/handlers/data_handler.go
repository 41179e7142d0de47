package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// DataHandler serves statement uploads and raw month listings.
type DataHandler struct {
	statements *service.StatementService
}

// NewDataHandler creates a DataHandler.
func NewDataHandler(statements *service.StatementService) *DataHandler {
	return &DataHandler{statements: statements}
}

// Upload handles POST /api/data/upload. Multipart, file field "file",
// optional "format" hint; the parser still detects the layout itself.
func (h *DataHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxUploadBytes)

	if hint := c.PostForm("format"); hint != "" &&
		hint != string(constants.FormatMonthly) && hint != string(constants.FormatTransactional) {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithDescription("format must be %q or %q", constants.FormatMonthly, constants.FormatTransactional))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err).WithDescription("multipart field 'file' is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	defer file.Close()

	resp, err := h.statements.Upload(
		c.Request.Context(),
		middleware.CompanyID(c),
		middleware.UserID(c),
		fileHeader.Filename,
		file,
	)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	dto.SendSuccess(c, status, resp)
}

// List handles GET /api/data.
func (h *DataHandler) List(c *gin.Context) {
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		dto.SendError(c, apperrors.ErrInvalidRequest.WithError(err))
		return
	}
	resp, err := h.statements.ListData(c.Request.Context(), middleware.CompanyID(c), &page)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Delete handles DELETE /api/data.
func (h *DataHandler) Delete(c *gin.Context) {
	err := h.statements.DeleteData(
		c.Request.Context(),
		middleware.CompanyID(c),
		middleware.UserID(c),
		middleware.Role(c),
	)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
