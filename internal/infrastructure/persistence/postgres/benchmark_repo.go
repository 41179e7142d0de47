package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// BenchmarkRepo implements repository.BenchmarkRepository on PostgreSQL.
// Seeded rows override the built-in industry quartile tables.
type BenchmarkRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewBenchmarkRepository creates a PostgreSQL-backed benchmark repository.
func NewBenchmarkRepository(db *gorm.DB, log logger.Logger) repository.BenchmarkRepository {
	return &BenchmarkRepo{db: db, logger: log.WithComponent("benchmark_repo")}
}

func (r *BenchmarkRepo) Upsert(ctx context.Context, row *models.IndustryBenchmark) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "industry"}, {Name: "metric"}},
		DoUpdates: clause.AssignmentColumns([]string{"industry_avg", "top_quartile", "bottom_quartile", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		r.logger.Error(ctx, "failed to upsert benchmark", err,
			logger.String("industry", string(row.Industry)),
			logger.String("metric", row.Metric),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *BenchmarkRepo) ListForIndustry(ctx context.Context, industry constants.Industry) ([]*models.IndustryBenchmark, error) {
	var rows []*models.IndustryBenchmark
	err := r.db.WithContext(ctx).
		Where("industry = ?", industry).
		Order("metric").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return rows, nil
}
