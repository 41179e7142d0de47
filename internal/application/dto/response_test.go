package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

func newEnvelopeContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestSendErrorUsesErrorStatus(t *testing.T) {
	c, rec := newEnvelopeContext(t)

	SendError(c, apperrors.ErrNotFound.WithDescription("company not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, constants.ErrCodeNotFound, resp.Error.Code)
}

func TestSendErrorDefaultsZeroStatusToInternal(t *testing.T) {
	c, rec := newEnvelopeContext(t)

	// An AppError built outside the predefined constructors may carry
	// no status; it must render as 500, never status 0.
	SendError(c, &apperrors.AppError{
		Code:    constants.ErrCodeInternal,
		Message: "background job failed",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, constants.ErrCodeInternal, resp.Error.Code)
}

func TestSendErrorWrapsUnknownErrors(t *testing.T) {
	c, rec := newEnvelopeContext(t)

	SendError(c, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, constants.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
