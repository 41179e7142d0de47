package dto

import (
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// MeResponse describes the authenticated user and their companies.
type MeResponse struct {
	User      *models.User      `json:"user"`
	Companies []*models.Company `json:"companies"`
}

// CompanyResponse pairs a company with the caller's role in it.
type CompanyResponse struct {
	Company *models.Company `json:"company"`
	Role    constants.Role  `json:"role"`
}

// UploadResponse summarizes an accepted statement upload.
type UploadResponse struct {
	DocumentID     string                    `json:"document_id"`
	Format         constants.StatementFormat `json:"format"`
	RowsRead       int                       `json:"rows_read"`
	MonthsAffected int                       `json:"months_affected"`
	LatestMonth    string                    `json:"latest_month"`
	Warnings       []string                  `json:"warnings,omitempty"`
	Duplicate      bool                      `json:"duplicate,omitempty"`
	HealthScore    float64                   `json:"health_score"`
	HealthCategory constants.HealthCategory  `json:"health_category"`
	ReportID       string                    `json:"report_id,omitempty"`
}

// MonthlyDataPage is the paginated raw months listing.
type MonthlyDataPage struct {
	Months     []*models.MonthlySummary `json:"months"`
	Pagination Pagination               `json:"pagination"`
}

// ReportListPage is the paginated report listing.
type ReportListPage struct {
	Reports    []*models.Report `json:"reports"`
	Pagination Pagination       `json:"pagination"`
}

// AuditLogPage is the paginated audit trail.
type AuditLogPage struct {
	Events     []*models.AuditEvent `json:"events"`
	Pagination Pagination           `json:"pagination"`
}

// IntegrationResponse is an integration without its credentials.
type IntegrationResponse struct {
	ID           string                    `json:"id"`
	Type         constants.IntegrationType `json:"type"`
	DisplayName  string                    `json:"display_name"`
	Enabled      bool                      `json:"enabled"`
	LastSyncedAt *time.Time                `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// NewIntegrationResponse strips credential material from the model.
func NewIntegrationResponse(i *models.Integration) *IntegrationResponse {
	return &IntegrationResponse{
		ID:           i.ID,
		Type:         i.Type,
		DisplayName:  i.DisplayName,
		Enabled:      i.Enabled,
		LastSyncedAt: i.LastSyncedAt,
		CreatedAt:    i.CreatedAt,
	}
}

// TrendPoint is one month in a dashboard trend series.
type TrendPoint struct {
	Month     string  `json:"month"`
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetIncome float64 `json:"net_income"`
	CashFlow  float64 `json:"cash_flow"`
}

// DashboardSummary is the headline view for the landing screen.
type DashboardSummary struct {
	CompanyID        string                   `json:"company_id"`
	Currency         string                   `json:"currency"`
	LatestMonth      string                   `json:"latest_month"`
	MonthsAvailable  int                      `json:"months_available"`
	LatestRevenue    string                   `json:"latest_revenue"`
	LatestNetIncome  string                   `json:"latest_net_income"`
	LatestCashFlow   string                   `json:"latest_cash_flow"`
	HealthScore      float64                  `json:"health_score"`
	HealthCategory   constants.HealthCategory `json:"health_category"`
	CreditScore      float64                  `json:"credit_score"`
	CreditRating     constants.CreditRating   `json:"credit_rating"`
	RiskScore        float64                  `json:"risk_score"`
	RiskLevel        constants.RiskLevel      `json:"risk_level"`
	Trend            []TrendPoint             `json:"trend"`
	InsufficientData bool                     `json:"insufficient_data,omitempty"`
	ComputedAt       time.Time                `json:"computed_at"`
}
