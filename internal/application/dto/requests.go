package dto

import (
	"github.com/finhealth/finhealth/pkg/constants"
)

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name" binding:"required"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateCompanyRequest creates a tenant.
type CreateCompanyRequest struct {
	Name                 string `json:"name" binding:"required"`
	Industry             string `json:"industry"`
	Currency             string `json:"currency"`
	FiscalYearStartMonth int    `json:"fiscal_year_start_month"`
	GSTIN                string `json:"gstin"`
	PAN                  string `json:"pan"`
}

// UpdateCompanyRequest updates the company profile. Nil fields are left
// unchanged.
type UpdateCompanyRequest struct {
	Name                 *string `json:"name"`
	Industry             *string `json:"industry"`
	Currency             *string `json:"currency"`
	FiscalYearStartMonth *int    `json:"fiscal_year_start_month"`
	GSTIN                *string `json:"gstin"`
	PAN                  *string `json:"pan"`
}

// SwitchCompanyRequest changes the user's default company.
type SwitchCompanyRequest struct {
	CompanyID string `json:"company_id" binding:"required,uuid"`
}

// ForecastQuery are the query parameters of the forecast endpoint.
type ForecastQuery struct {
	MonthsAhead  int    `form:"months_ahead"`
	ForecastType string `form:"forecast_type"`
}

// PageQuery are the shared paging query parameters.
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize applies defaults and bounds.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = constants.DefaultPageSize
	}
	if q.PageSize > constants.MaxPageSize {
		q.PageSize = constants.MaxPageSize
	}
}

// Offset converts page/page_size to a row offset.
func (q *PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// CreateIntegrationRequest connects an external data source.
type CreateIntegrationRequest struct {
	Type        constants.IntegrationType `json:"type" binding:"required"`
	DisplayName string                    `json:"display_name"`
	Credentials map[string]string         `json:"credentials" binding:"required"`
}

// UpdatePreferencesRequest stores per-user dashboard settings.
type UpdatePreferencesRequest struct {
	DashboardLayout     *string `json:"dashboard_layout"`
	EmailNotifications  *bool   `json:"email_notifications"`
	MonthlyReportEmails *bool   `json:"monthly_report_emails"`
	Locale              *string `json:"locale"`
}

// InviteUserRequest adds a member to the current company.
type InviteUserRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Role  constants.Role `json:"role" binding:"required"`
}
