package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// FinancialRepo implements repository.FinancialRepository on PostgreSQL.
type FinancialRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewFinancialRepository creates a PostgreSQL-backed financial repository.
func NewFinancialRepository(db *gorm.DB, log logger.Logger) repository.FinancialRepository {
	return &FinancialRepo{db: db, logger: log.WithComponent("financial_repo")}
}

func (r *FinancialRepo) SaveRows(ctx context.Context, rows []*models.FinancialData) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		r.logger.Error(ctx, "failed to save statement rows", err,
			logger.String("company_id", rows[0].CompanyID),
			logger.Int("rows", len(rows)),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

// UpsertMonthlySummary inserts or replaces the summary row for the
// company month.
func (r *FinancialRepo) UpsertMonthlySummary(ctx context.Context, summary *models.MonthlySummary) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"revenue", "expenses", "cogs", "net_income", "cash_balance",
			"receivables", "payables", "inventory", "total_assets",
			"total_liabilities", "equity", "current_assets",
			"current_liabilities", "operating_cash_flow",
			"interest_expense", "debt_to_equity", "updated_at",
		}),
	}).Create(summary).Error
	if err != nil {
		r.logger.Error(ctx, "failed to upsert monthly summary", err,
			logger.String("company_id", summary.CompanyID),
			logger.String("month", summary.Month),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *FinancialRepo) ListMonthlySummaries(ctx context.Context, companyID string) ([]*models.MonthlySummary, error) {
	var rows []*models.MonthlySummary
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("month").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return rows, nil
}

func (r *FinancialRepo) ListMonthlySummariesPage(ctx context.Context, companyID string, limit, offset int) ([]*models.MonthlySummary, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.MonthlySummary{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}

	var rows []*models.MonthlySummary
	err := query.Order("month DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}
	return rows, total, nil
}

// DeleteCompanyData removes all statement rows and summaries for a
// company. Used when a company is deleted.
func (r *FinancialRepo) DeleteCompanyData(ctx context.Context, companyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.FinancialData{},
			&models.MonthlySummary{},
			&models.UploadedDocument{},
		} {
			if err := tx.Where("company_id = ?", companyID).Delete(model).Error; err != nil {
				return apperrors.ErrDatabase.WithError(err)
			}
		}
		return nil
	})
}

func (r *FinancialRepo) SaveDocument(ctx context.Context, doc *models.UploadedDocument) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.logger.Error(ctx, "failed to save upload record", err,
			logger.String("company_id", doc.CompanyID),
			logger.String("filename", doc.Filename),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

// FindDocumentByChecksum returns the previous upload with the same
// checksum, or nil when the file has not been seen before.
func (r *FinancialRepo) FindDocumentByChecksum(ctx context.Context, companyID, sha256 string) (*models.UploadedDocument, error) {
	var doc models.UploadedDocument
	err := r.db.WithContext(ctx).
		First(&doc, "company_id = ? AND sha256 = ?", companyID, sha256).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &doc, nil
}
