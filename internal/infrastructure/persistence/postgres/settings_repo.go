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

// IntegrationRepo implements repository.IntegrationRepository.
type IntegrationRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewIntegrationRepository creates a PostgreSQL-backed integration repository.
func NewIntegrationRepository(db *gorm.DB, log logger.Logger) repository.IntegrationRepository {
	return &IntegrationRepo{db: db, logger: log.WithComponent("integration_repo")}
}

func (r *IntegrationRepo) Create(ctx context.Context, integration *models.Integration) error {
	if err := r.db.WithContext(ctx).Create(integration).Error; err != nil {
		r.logger.Error(ctx, "failed to create integration", err,
			logger.String("company_id", integration.CompanyID),
			logger.String("type", string(integration.Type)),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *IntegrationRepo) List(ctx context.Context, companyID string) ([]*models.Integration, error) {
	var integrations []*models.Integration
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at").
		Find(&integrations).Error
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return integrations, nil
}

func (r *IntegrationRepo) FindByID(ctx context.Context, companyID, id string) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.WithContext(ctx).
		First(&integration, "id = ? AND company_id = ?", id, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithDescription("integration %s not found", id)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &integration, nil
}

func (r *IntegrationRepo) Delete(ctx context.Context, companyID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&models.Integration{})
	if result.Error != nil {
		return apperrors.ErrDatabase.WithError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithDescription("integration %s not found", id)
	}
	return nil
}

// PreferenceRepo implements repository.PreferenceRepository.
type PreferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a PostgreSQL-backed preference repository.
func NewPreferenceRepository(db *gorm.DB) repository.PreferenceRepository {
	return &PreferenceRepo{db: db}
}

func (r *PreferenceRepo) Upsert(ctx context.Context, pref *models.UserPreference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dashboard_layout", "email_notifications", "monthly_report_emails",
			"score_alert_thresholds", "locale", "updated_at",
		}),
	}).Create(pref).Error
	if err != nil {
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *PreferenceRepo) Find(ctx context.Context, userID, companyID string) (*models.UserPreference, error) {
	var pref models.UserPreference
	err := r.db.WithContext(ctx).
		First(&pref, "user_id = ? AND company_id = ?", userID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &pref, nil
}
