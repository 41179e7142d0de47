package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/finhealth/finhealth/internal/domain/models"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

// AutoMigrate creates or updates the FinHealth schema.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.UserCompany{},
		&models.UserPreference{},
		&models.Integration{},
		&models.FinancialData{},
		&models.MonthlySummary{},
		&models.UploadedDocument{},
		&models.ComputedSummary{},
		&models.Report{},
		&models.IndustryBenchmark{},
		&models.AuditEvent{},
	)
	if err != nil {
		return apperrors.ErrDatabase.WithError(err).WithDescription("schema migration failed")
	}
	return nil
}
