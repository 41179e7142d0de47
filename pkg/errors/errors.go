// Package errors defines structured error types and error handling
// utilities for the FinHealth service. Errors carry an error code, an
// HTTP status and optional per-field details so handlers can render a
// consistent API envelope.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/finhealth/finhealth/pkg/constants"
)

// AppError represents a structured application error.
type AppError struct {
	Code        constants.ErrorCode
	Status      int
	Message     string
	Description string
	Details     map[string]string
	cause       error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the HTTP status code to render, defaulting to 500.
func (e *AppError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithError returns a copy of the error carrying cause as the wrapped error.
func (e *AppError) WithError(cause error) *AppError {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithDescription returns a copy with a caller-facing description.
func (e *AppError) WithDescription(format string, args ...interface{}) *AppError {
	clone := *e
	clone.Description = fmt.Sprintf(format, args...)
	return &clone
}

// WithDetail returns a copy with a key/value detail attached.
func (e *AppError) WithDetail(key, value string) *AppError {
	clone := *e
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	clone.Details = details
	return &clone
}

// New creates an AppError with the given code, status and message.
func New(code constants.ErrorCode, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

// AsAppError extracts an *AppError from an error chain. When err is not
// an AppError it is wrapped as an internal error so callers always get
// a renderable error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithError(err)
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// ErrInternal is the catch-all server-side failure.
	ErrInternal = New(constants.ErrCodeInternal, http.StatusInternalServerError, "internal server error")

	// ErrInvalidRequest indicates a malformed or failed-validation request.
	ErrInvalidRequest = New(constants.ErrCodeInvalidRequest, http.StatusBadRequest, "invalid request")

	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = New(constants.ErrCodeUnauthorized, http.StatusUnauthorized, "authentication required")

	// ErrForbidden indicates the caller lacks access to the resource.
	ErrForbidden = New(constants.ErrCodeForbidden, http.StatusForbidden, "access denied")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = New(constants.ErrCodeNotFound, http.StatusNotFound, "resource not found")

	// ErrConflict indicates a uniqueness or state conflict.
	ErrConflict = New(constants.ErrCodeConflict, http.StatusConflict, "resource conflict")

	// ErrRateLimited indicates the per-IP request budget was exceeded.
	ErrRateLimited = New(constants.ErrCodeRateLimited, http.StatusTooManyRequests, "rate limit exceeded")

	// ErrUnprocessableStatement indicates an upload that could not be parsed.
	ErrUnprocessableStatement = New(constants.ErrCodeUnprocessable, http.StatusUnprocessableEntity, "statement could not be processed")

	// ErrInsufficientData indicates too little history for an analytics engine.
	ErrInsufficientData = New(constants.ErrCodeInsufficientData, http.StatusUnprocessableEntity, "insufficient financial history")

	// ErrDatabase wraps persistence failures.
	ErrDatabase = New(constants.ErrCodeInternal, http.StatusInternalServerError, "database operation failed")

	// ErrCache wraps cache failures.
	ErrCache = New(constants.ErrCodeInternal, http.StatusInternalServerError, "cache operation failed")

	// ErrServiceUnavailable indicates a dependency outage.
	ErrServiceUnavailable = New(constants.ErrCodeServiceUnavailable, http.StatusServiceUnavailable, "service temporarily unavailable")
)

// ================================================================================
// Domain Error Constructors
// ================================================================================

// ErrCompanyNotFound reports a missing company.
func ErrCompanyNotFound(companyID string) *AppError {
	return ErrNotFound.
		WithDescription("company %s not found", companyID).
		WithDetail("company_id", companyID)
}

// ErrUserNotFound reports a missing user.
func ErrUserNotFound(identifier string) *AppError {
	return ErrNotFound.
		WithDescription("user %s not found", identifier).
		WithDetail("user", identifier)
}

// ErrNotMember reports that a user does not belong to the requested company.
func ErrNotMember(companyID string) *AppError {
	return ErrForbidden.
		WithDescription("caller is not a member of company %s", companyID).
		WithDetail("company_id", companyID)
}

// ErrInvalidCompanyHeader reports a malformed X-Company-ID value.
func ErrInvalidCompanyHeader(value string) *AppError {
	return ErrInvalidRequest.
		WithDescription("%s header must be a UUID", constants.HeaderCompanyID).
		WithDetail("value", value)
}

// ErrEmailTaken reports a registration against an existing email.
func ErrEmailTaken(email string) *AppError {
	return ErrConflict.
		WithDescription("email %s is already registered", email).
		WithDetail("email", email)
}

// ErrInvalidCredentials reports a failed login without disclosing which
// part of the credential was wrong.
func ErrInvalidCredentials() *AppError {
	return ErrUnauthorized.WithDescription("invalid email or password")
}

// ErrInvalidToken reports a malformed or badly signed bearer token.
func ErrInvalidToken() *AppError {
	return ErrUnauthorized.WithDescription("invalid access token")
}

// ErrTokenExpired reports an expired bearer token.
func ErrTokenExpired() *AppError {
	return ErrUnauthorized.WithDescription("access token expired")
}
