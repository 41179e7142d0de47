package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// ReportRepo implements repository.ReportRepository on PostgreSQL.
type ReportRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewReportRepository creates a PostgreSQL-backed report repository.
func NewReportRepository(db *gorm.DB, log logger.Logger) repository.ReportRepository {
	return &ReportRepo{db: db, logger: log.WithComponent("report_repo")}
}

func (r *ReportRepo) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		r.logger.Error(ctx, "failed to create report", err,
			logger.String("company_id", report.CompanyID),
			logger.Int("version", report.Version),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

// NextVersion returns the next report version for the company,
// starting at 1.
func (r *ReportRepo) NextVersion(ctx context.Context, companyID string) (int, error) {
	var maxVersion int
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, apperrors.ErrDatabase.WithError(err)
	}
	return maxVersion + 1, nil
}

func (r *ReportRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*models.Report, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.Report{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}

	var reports []*models.Report
	err := query.Order("version DESC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}
	return reports, total, nil
}

func (r *ReportRepo) FindByID(ctx context.Context, companyID, reportID string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		First(&report, "id = ? AND company_id = ?", reportID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithDescription("report %s not found", reportID)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &report, nil
}
