// Package dto defines the request and response documents of the HTTP
// API, and the shared response envelope.
package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries the client-visible error document.
type ErrorDTO struct {
	Code        constants.ErrorCode `json:"code"`
	Message     string              `json:"message"`
	Description string              `json:"description,omitempty"`
	Details     map[string]string   `json:"details,omitempty"`
}

// Pagination is the paging metadata attached to list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination derives paging metadata from a page request and total.
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// traceIDFrom pulls the request trace ID set by the middleware.
func traceIDFrom(c *gin.Context) string {
	if traceID, ok := c.Request.Context().Value(constants.ContextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

// SendSuccess writes a success envelope with the given status.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceIDFrom(c),
		Timestamp: time.Now().Unix(),
	})
}

// SendError maps an error to the envelope. Non-AppErrors become opaque
// internal errors so no implementation detail leaks.
func SendError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus(), &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:        appErr.Code,
			Message:     appErr.Message,
			Description: appErr.Description,
			Details:     appErr.Details,
		},
		TraceID:   traceIDFrom(c),
		Timestamp: time.Now().Unix(),
	})
}

// AbortError is SendError plus request abortion, for middleware.
func AbortError(c *gin.Context, err error) {
	SendError(c, err)
	c.Abort()
}

// SendNotFoundRoute is the NoRoute handler body.
func SendNotFoundRoute(c *gin.Context) {
	SendError(c, apperrors.ErrNotFound.WithDescription("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}
