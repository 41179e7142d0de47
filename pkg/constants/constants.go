// Package constants defines system-wide constants for the FinHealth service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for values stored on a request context.
type ContextKey string

const (
	// ContextKeyTraceID carries the per-request trace identifier.
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyUserID carries the authenticated user ID.
	ContextKeyUserID ContextKey = "user_id"

	// ContextKeyCompanyID carries the resolved tenant company ID.
	ContextKeyCompanyID ContextKey = "company_id"

	// ContextKeyRole carries the caller's role within the company.
	ContextKeyRole ContextKey = "company_role"

	// ContextKeyLogger carries a request-scoped logger.
	ContextKeyLogger ContextKey = "logger"
)

// Gin context keys. Middleware sets these, handlers read them.
const (
	GinKeyUserID    = "user_id"
	GinKeyUserEmail = "user_email"
	GinKeyCompanyID = "company_id"
	GinKeyRole      = "company_role"
	GinKeyTraceID   = "trace_id"
)

// HeaderCompanyID is the tenant selection header carried on every
// company-scoped request.
const HeaderCompanyID = "X-Company-ID"

// ================================================================================
// Roles
// ================================================================================

// Role represents a user's role within a company.
type Role string

const (
	RoleOwner          Role = "owner"
	RoleAdmin          Role = "admin"
	RoleFinanceManager Role = "finance_manager"
	RoleViewer         Role = "viewer"
)

// AssignableRoles are the roles an invite may grant. Owner is reserved
// for the company creator.
var AssignableRoles = []Role{RoleAdmin, RoleFinanceManager, RoleViewer}

// IsAssignable reports whether the role may be granted through an invite.
func (r Role) IsAssignable() bool {
	for _, role := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CanManage reports whether the role may change company settings and
// read audit logs.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ================================================================================
// Statement Formats and Upload Status
// ================================================================================

// StatementFormat identifies the layout of an uploaded statement file.
type StatementFormat string

const (
	// FormatMonthly is a pre-aggregated file with one row per month.
	FormatMonthly StatementFormat = "monthly"

	// FormatTransactional is a row-per-transaction file with
	// date, category, amount and type columns.
	FormatTransactional StatementFormat = "transactional"
)

// UploadStatus tracks the lifecycle of an uploaded document.
type UploadStatus string

const (
	UploadStatusProcessed UploadStatus = "processed"
	UploadStatusFailed    UploadStatus = "failed"
)

// MaxUploadBytes caps statement uploads at 10 MiB.
const MaxUploadBytes = 10 << 20

const (
	// DefaultPageSize applies when a list request names no page size.
	DefaultPageSize = 20

	// MaxPageSize bounds client-requested page sizes.
	MaxPageSize = 100
)

// ================================================================================
// Health Categories
// ================================================================================

// HealthCategory is the qualitative label derived from the 0-100 health score.
type HealthCategory string

const (
	HealthExcellent    HealthCategory = "Excellent"
	HealthGood         HealthCategory = "Good"
	HealthModerate     HealthCategory = "Moderate"
	HealthWeak         HealthCategory = "Weak"
	HealthCritical     HealthCategory = "Critical"
	HealthInsufficient HealthCategory = "Insufficient Data"
)

// ================================================================================
// Credit Ratings and Eligibility
// ================================================================================

// CreditRating is the letter rating derived from the 0-900 credit score.
type CreditRating string

const (
	RatingAAA      CreditRating = "AAA"
	RatingAA       CreditRating = "AA"
	RatingA        CreditRating = "A"
	RatingBBB      CreditRating = "BBB"
	RatingBB       CreditRating = "BB"
	RatingHighRisk CreditRating = "High Risk"
)

// LoanEligibility is the loan eligibility verdict attached to a credit
// evaluation.
type LoanEligibility string

const (
	EligibilityEligible    LoanEligibility = "Eligible"
	EligibilityConditional LoanEligibility = "Conditionally Eligible"
	EligibilityNotEligible LoanEligibility = "Not Eligible"
)

// MaxCreditScore is the upper bound of the credit scale.
const MaxCreditScore = 900

// ================================================================================
// Risk Levels
// ================================================================================

// RiskLevel is the qualitative label derived from the 0-100 risk index.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ================================================================================
// Forecast Types
// ================================================================================

// ForecastType selects the growth scenario used for projections.
type ForecastType string

const (
	ForecastBase         ForecastType = "Base"
	ForecastOptimistic   ForecastType = "Optimistic"
	ForecastConservative ForecastType = "Conservative"
)

const (
	// ForecastDefaultMonths is used when months_ahead is not supplied.
	ForecastDefaultMonths = 6

	// ForecastMaxMonths bounds the projection horizon.
	ForecastMaxMonths = 12
)

// IsValidForecastType reports whether t is a supported scenario.
func IsValidForecastType(t ForecastType) bool {
	return t == ForecastBase || t == ForecastOptimistic || t == ForecastConservative
}

// ================================================================================
// Industries
// ================================================================================

// Industry is a benchmark peer group.
type Industry string

const (
	IndustryRetail        Industry = "Retail"
	IndustryManufacturing Industry = "Manufacturing"
	IndustryServices      Industry = "Services"
	IndustryTechnology    Industry = "Technology"
	IndustryGeneral       Industry = "General"
)

// ================================================================================
// Integration Types
// ================================================================================

// IntegrationType identifies an external data source a company can connect.
type IntegrationType string

const (
	IntegrationBankAPI    IntegrationType = "bank_api"
	IntegrationGSTPortal  IntegrationType = "gst_portal"
	IntegrationTally      IntegrationType = "tally"
	IntegrationZoho       IntegrationType = "zoho"
	IntegrationQuickBooks IntegrationType = "quickbooks"
)

// ValidIntegrationTypes lists every supported integration type.
var ValidIntegrationTypes = []IntegrationType{
	IntegrationBankAPI,
	IntegrationGSTPortal,
	IntegrationTally,
	IntegrationZoho,
	IntegrationQuickBooks,
}

// IsValidIntegrationType reports whether t is a supported integration type.
func IsValidIntegrationType(t IntegrationType) bool {
	for _, valid := range ValidIntegrationTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// ================================================================================
// Cache Keys and TTLs
// ================================================================================

const (
	// CacheKeyHealth et al. are summary cache key prefixes; the company
	// ID is appended.
	CacheKeyHealth    = "summary:health:"
	CacheKeyCredit    = "summary:credit:"
	CacheKeyRisk      = "summary:risk:"
	CacheKeyForecast  = "summary:forecast:"
	CacheKeyBenchmark = "summary:benchmark:"
	CacheKeyDashboard = "summary:dashboard:"

	// CacheKeyMembership prefixes cached user-company membership lookups.
	CacheKeyMembership = "membership:"

	// RateLimitKeyPrefix prefixes per-IP fixed window counters.
	RateLimitKeyPrefix = "ratelimit:ip:"
)

const (
	// SummaryCacheTTL bounds staleness of cached analytics payloads.
	// Uploads invalidate eagerly; the TTL is a backstop.
	SummaryCacheTTL = 15 * time.Minute

	// MembershipCacheTTL bounds the in-process membership cache.
	MembershipCacheTTL = 2 * time.Minute
)

// ================================================================================
// Rate Limiting
// ================================================================================

const (
	// RateLimitPerMinute is the per-IP request budget.
	RateLimitPerMinute = 240

	// RateLimitWindow is the fixed window size.
	RateLimitWindow = time.Minute
)

// ================================================================================
// Auth Defaults
// ================================================================================

const (
	// AccessTokenTTL is the lifetime of issued access tokens.
	AccessTokenTTL = 24 * time.Hour

	// BcryptCost is the work factor for password hashing.
	BcryptCost = 12

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// ================================================================================
// Monetary Defaults
// ================================================================================

const (
	// DefaultCurrency is assigned to companies that do not specify one.
	DefaultCurrency = "INR"

	// DefaultFiscalYearStartMonth is April, matching the Indian fiscal year.
	DefaultFiscalYearStartMonth = 4
)

// MonthLayout is the canonical month key format for statement rows.
const MonthLayout = "2006-01"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode classifies application errors for the API envelope.
type ErrorCode string

const (
	ErrCodeInternal           ErrorCode = "internal_error"
	ErrCodeInvalidRequest     ErrorCode = "invalid_request"
	ErrCodeUnauthorized       ErrorCode = "unauthorized"
	ErrCodeForbidden          ErrorCode = "forbidden"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeConflict           ErrorCode = "conflict"
	ErrCodeRateLimited        ErrorCode = "rate_limit_exceeded"
	ErrCodeUnprocessable      ErrorCode = "unprocessable_statement"
	ErrCodeInsufficientData   ErrorCode = "insufficient_data"
	ErrCodeServiceUnavailable ErrorCode = "service_unavailable"
)
