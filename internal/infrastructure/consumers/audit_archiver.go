// Package consumers contains Kafka consumers for background processing.
package consumers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/pkg/logger"
)

const (
	archiveBatchSize    = 100
	archiveFlushTimeout = 5 * time.Second
)

// AuditArchiver consumes the audit topic and persists events in
// batches. It backs deployments where the API publishes events instead
// of writing them to the archive database directly. Events keep their
// producer-assigned IDs, so replays after a crash are deduplicated by
// the repository.
type AuditArchiver struct {
	reader *kafka.Reader
	repo   repository.AuditRepository
	logger logger.Logger
	stop   chan struct{}
	done   chan struct{}
}

// NewAuditArchiver builds the consumer from Kafka configuration.
func NewAuditArchiver(cfg *config.KafkaConfig, repo repository.AuditRepository, log logger.Logger) *AuditArchiver {
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "finhealth-audit-archivers"
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.AuditTopic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return &AuditArchiver{
		reader: reader,
		repo:   repo,
		logger: log.WithComponent("AuditArchiver"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the consume loop in its own goroutine and returns.
// The loop runs until Stop is called or ctx is cancelled.
func (a *AuditArchiver) Start(ctx context.Context) {
	a.logger.Info(ctx, "Starting audit archiver")
	go a.run(ctx)
}

func (a *AuditArchiver) run(ctx context.Context) {
	defer close(a.done)

	batch := make([]*models.AuditEvent, 0, archiveBatchSize)
	pending := make([]kafka.Message, 0, archiveBatchSize)
	lastFlush := time.Now()

	for {
		select {
		case <-a.stop:
			a.flush(ctx, batch, pending)
			a.logger.Info(ctx, "Audit archiver stopped")
			return
		case <-ctx.Done():
			a.flush(context.Background(), batch, pending)
			return
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, archiveFlushTimeout)
		msg, err := a.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			// Timeout or broker hiccup; flush what we have.
			if len(batch) > 0 {
				batch, pending = a.flush(ctx, batch, pending)
				lastFlush = time.Now()
			}
			continue
		}

		var event models.AuditEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			a.logger.Error(ctx, "Failed to unmarshal audit event, skipping", err,
				logger.Int("offset", int(msg.Offset)),
			)
			// Commit the poison message so it is not reprocessed.
			_ = a.reader.CommitMessages(ctx, msg)
			continue
		}

		batch = append(batch, &event)
		pending = append(pending, msg)

		if len(batch) >= archiveBatchSize || time.Since(lastFlush) >= archiveFlushTimeout {
			batch, pending = a.flush(ctx, batch, pending)
			lastFlush = time.Now()
		}
	}
}

// flush persists the batch and commits its offsets. On persistence
// failure offsets stay uncommitted so the batch is redelivered.
func (a *AuditArchiver) flush(ctx context.Context, batch []*models.AuditEvent, pending []kafka.Message) ([]*models.AuditEvent, []kafka.Message) {
	if len(batch) == 0 {
		return batch, pending
	}

	if err := a.repo.SaveBatch(ctx, batch); err != nil {
		a.logger.Error(ctx, "Failed to archive audit batch", err, logger.Int("events", len(batch)))
		return batch, pending
	}

	if err := a.reader.CommitMessages(ctx, pending...); err != nil {
		a.logger.Error(ctx, "Failed to commit archived offsets", err)
	}

	a.logger.Debug(ctx, "Audit batch archived", logger.Int("events", len(batch)))
	return batch[:0], pending[:0]
}

// Stop shuts the consumer down, closes the reader and waits for the
// loop to flush its final batch.
func (a *AuditArchiver) Stop() {
	close(a.stop)
	if err := a.reader.Close(); err != nil {
		a.logger.Error(context.Background(), "Failed to close kafka reader", err)
	}
	<-a.done
}
