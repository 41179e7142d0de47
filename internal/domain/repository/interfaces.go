// Package repository defines the persistence contracts the domain and
// application layers depend on. Implementations live under
// internal/infrastructure/persistence.
package repository

import (
	"context"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// CompanyRepository persists companies and user-company memberships.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	ListForUser(ctx context.Context, userID string) ([]*models.Company, error)

	AddMember(ctx context.Context, membership *models.UserCompany) error
	FindMembership(ctx context.Context, userID, companyID string) (*models.UserCompany, error)
	ListMembers(ctx context.Context, companyID string) ([]*models.UserCompany, error)
}

// FinancialRepository persists raw statement rows, monthly summaries
// and upload records.
type FinancialRepository interface {
	SaveRows(ctx context.Context, rows []*models.FinancialData) error
	UpsertMonthlySummary(ctx context.Context, summary *models.MonthlySummary) error
	ListMonthlySummaries(ctx context.Context, companyID string) ([]*models.MonthlySummary, error)
	ListMonthlySummariesPage(ctx context.Context, companyID string, limit, offset int) ([]*models.MonthlySummary, int64, error)
	DeleteCompanyData(ctx context.Context, companyID string) error

	SaveDocument(ctx context.Context, doc *models.UploadedDocument) error
	FindDocumentByChecksum(ctx context.Context, companyID, sha256 string) (*models.UploadedDocument, error)
}

// SummaryRepository persists computed analytics summaries, one row per
// company per kind.
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *models.ComputedSummary) error
	Find(ctx context.Context, companyID string, kind models.SummaryKind) (*models.ComputedSummary, error)
	DeleteForCompany(ctx context.Context, companyID string) error
}

// BenchmarkRepository reads and seeds industry benchmark rows.
type BenchmarkRepository interface {
	Upsert(ctx context.Context, row *models.IndustryBenchmark) error
	ListForIndustry(ctx context.Context, industry constants.Industry) ([]*models.IndustryBenchmark, error)
}

// ReportRepository persists versioned report snapshots.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	NextVersion(ctx context.Context, companyID string) (int, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*models.Report, int64, error)
	FindByID(ctx context.Context, companyID, reportID string) (*models.Report, error)
}

// AuditRepository persists and queries audit events.
type AuditRepository interface {
	Save(ctx context.Context, event *models.AuditEvent) error
	SaveBatch(ctx context.Context, events []*models.AuditEvent) error
	List(ctx context.Context, companyID string, limit, offset int) ([]*models.AuditEvent, int64, error)
}

// IntegrationRepository persists external source connections.
type IntegrationRepository interface {
	Create(ctx context.Context, integration *models.Integration) error
	List(ctx context.Context, companyID string) ([]*models.Integration, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Integration, error)
	Delete(ctx context.Context, companyID, id string) error
}

// PreferenceRepository persists per-user, per-company preferences.
type PreferenceRepository interface {
	Upsert(ctx context.Context, pref *models.UserPreference) error
	Find(ctx context.Context, userID, companyID string) (*models.UserPreference, error)
}
