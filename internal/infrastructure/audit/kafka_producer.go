// Package audit records mutating actions against company data. Events
// are persisted to Postgres and, when Kafka is enabled, mirrored to the
// audit topic for downstream archival.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/logger"
)

// KafkaProducer publishes audit events to the audit topic.
type KafkaProducer struct {
	writer  *kafka.Writer
	brokers []string
	logger  logger.Logger
}

// NewKafkaProducer builds the producer from Kafka configuration.
func NewKafkaProducer(cfg *config.KafkaConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	}
	return &KafkaProducer{
		writer:  writer,
		brokers: cfg.Brokers,
		logger:  log.WithComponent("AuditKafkaProducer"),
	}
}

// Publish sends one audit event, keyed by company so per-tenant order
// is preserved within a partition.
func (p *KafkaProducer) Publish(ctx context.Context, event *models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "Failed to marshal audit event", err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CompanyID),
		Value: payload,
	}); err != nil {
		p.logger.Error(ctx, "Failed to publish audit event", err,
			logger.String("action", event.Action),
			logger.String("company_id", event.CompanyID),
		)
		return err
	}
	return nil
}

// HealthCheck dials the first broker so /health can report on the
// audit pipeline.
func (p *KafkaProducer) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	brokers, err := conn.Brokers()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":  "healthy",
		"brokers": len(brokers),
		"topic":   p.writer.Topic,
	}, nil
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
