package consumers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/pkg/logger"
)

func newArchiver(t *testing.T) *AuditArchiver {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(context.Background(), db))

	audits := postgres.NewAuditRepository(db, logger.NewNop())
	// Unreachable broker: the lifecycle must not depend on Kafka being up.
	return NewAuditArchiver(&config.KafkaConfig{
		Brokers:    []string{"127.0.0.1:1"},
		AuditTopic: "finhealth.audit",
	}, audits, logger.NewNop())
}

// Start must hand control back to the caller immediately so server
// bootstrap can continue to the HTTP listener.
func TestAuditArchiverStartReturnsImmediately(t *testing.T) {
	archiver := newArchiver(t)

	started := make(chan struct{})
	go func() {
		archiver.Start(context.Background())
		close(started)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return; consume loop is running on the caller's goroutine")
	}
	archiver.Stop()
}

func TestAuditArchiverStopTerminatesLoop(t *testing.T) {
	archiver := newArchiver(t)
	archiver.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		archiver.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not terminate the consume loop")
	}
}

func TestAuditArchiverStopAfterContextCancel(t *testing.T) {
	archiver := newArchiver(t)
	ctx, cancel := context.WithCancel(context.Background())
	archiver.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		archiver.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
