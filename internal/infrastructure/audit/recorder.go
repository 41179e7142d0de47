package audit

import (
	"context"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/pkg/logger"
)

// Recorder is the audit entry point used by the application services.
type Recorder interface {
	Record(ctx context.Context, event *models.AuditEvent)
}

// Publisher mirrors recorded events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event *models.AuditEvent) error
}

// DBRecorder persists events through the audit repository and, when a
// publisher is configured, mirrors them to Kafka. Audit failures are
// logged but never fail the caller's request.
type DBRecorder struct {
	repo      repository.AuditRepository
	publisher Publisher
	logger    logger.Logger
}

// NewDBRecorder builds the recorder. publisher may be nil when Kafka is
// disabled.
func NewDBRecorder(repo repository.AuditRepository, publisher Publisher, log logger.Logger) *DBRecorder {
	return &DBRecorder{
		repo:      repo,
		publisher: publisher,
		logger:    log.WithComponent("AuditRecorder"),
	}
}

func (r *DBRecorder) Record(ctx context.Context, event *models.AuditEvent) {
	if err := r.repo.Save(ctx, event); err != nil {
		r.logger.Error(ctx, "Failed to persist audit event", err,
			logger.String("action", event.Action),
			logger.String("company_id", event.CompanyID),
		)
	}

	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn(ctx, "Failed to mirror audit event",
			logger.String("action", event.Action),
			logger.String("error", err.Error()),
		)
	}
}
