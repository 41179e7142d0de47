package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// AuditRepo implements repository.AuditRepository on PostgreSQL.
type AuditRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewAuditRepository creates a PostgreSQL-backed audit repository.
func NewAuditRepository(db *gorm.DB, log logger.Logger) repository.AuditRepository {
	return &AuditRepo{db: db, logger: log.WithComponent("audit_repo")}
}

func (r *AuditRepo) Save(ctx context.Context, event *models.AuditEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.logger.Error(ctx, "failed to save audit event", err,
			logger.String("action", event.Action),
			logger.String("company_id", event.CompanyID),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *AuditRepo) SaveBatch(ctx context.Context, events []*models.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	// Replayed events keep their original IDs; skip rows already stored.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(events, 500).Error; err != nil {
		r.logger.Error(ctx, "failed to save audit batch", err, logger.Int("events", len(events)))
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*models.AuditEvent, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}

	var events []*models.AuditEvent
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, apperrors.ErrDatabase.WithError(err)
	}
	return events, total, nil
}
