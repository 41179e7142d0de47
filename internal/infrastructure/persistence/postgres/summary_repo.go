package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// SummaryRepo implements repository.SummaryRepository on PostgreSQL.
type SummaryRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewSummaryRepository creates a PostgreSQL-backed summary repository.
func NewSummaryRepository(db *gorm.DB, log logger.Logger) repository.SummaryRepository {
	return &SummaryRepo{db: db, logger: log.WithComponent("summary_repo")}
}

func (r *SummaryRepo) Upsert(ctx context.Context, summary *models.ComputedSummary) error {
	if summary.ComputedAt.IsZero() {
		summary.ComputedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "computed_at", "updated_at"}),
	}).Create(summary).Error
	if err != nil {
		r.logger.Error(ctx, "failed to upsert computed summary", err,
			logger.String("company_id", summary.CompanyID),
			logger.String("kind", string(summary.Kind)),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *SummaryRepo) Find(ctx context.Context, companyID string, kind models.SummaryKind) (*models.ComputedSummary, error) {
	var summary models.ComputedSummary
	err := r.db.WithContext(ctx).
		First(&summary, "company_id = ? AND kind = ?", companyID, kind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithDescription("no %s summary computed yet", kind)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &summary, nil
}

func (r *SummaryRepo) DeleteForCompany(ctx context.Context, companyID string) error {
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Delete(&models.ComputedSummary{}).Error
	if err != nil {
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}
