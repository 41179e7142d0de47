//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

// TestStatementPipelineAgainstPostgres runs the register, upload and
// analytics flow against a real PostgreSQL instance instead of the
// SQLite stand-in the unit tests use.
func TestStatementPipelineAgainstPostgres(t *testing.T) {
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()

	pgc, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		pgcontainer.WithDatabase("finhealth"),
		pgcontainer.WithUsername("finhealth"),
		pgcontainer.WithPassword("finhealth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgc.Terminate(ctx))
	}()

	host, err := pgc.Host(ctx)
	require.NoError(t, err)
	port, err := pgc.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	log := logger.NewNop()
	db, err := postgres.NewDBConnection(ctx, &config.DatabaseConfig{
		Host:        host,
		Port:        port.Int(),
		User:        "finhealth",
		Password:    "finhealth",
		Database:    "finhealth",
		SSLMode:     "disable",
		MaxConns:    4,
		MinConns:    1,
		ConnTimeout: 30,
	}, log)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, postgres.AutoMigrate(ctx, db.GORM()))

	mr := miniredis.RunT(t)
	redisConn, err := redis.NewConnection(ctx, &config.RedisConfig{Addr: mr.Addr()}, log)
	require.NoError(t, err)
	defer redisConn.Close()

	users := postgres.NewUserRepository(db.GORM(), log)
	companies := postgres.NewCompanyRepository(db.GORM(), log)
	financials := postgres.NewFinancialRepository(db.GORM(), log)
	summaries := postgres.NewSummaryRepository(db.GORM(), log)
	benchmarks := postgres.NewBenchmarkRepository(db.GORM(), log)
	reports := postgres.NewReportRepository(db.GORM(), log)
	audits := postgres.NewAuditRepository(db.GORM(), log)

	cache := redis.NewSummaryCache(redisConn, log)
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	recorder := audit.NewDBRecorder(audits, nil, log)
	tokens := crypto.NewTokenManager(&config.JWTConfig{
		Secret:   "integration-test-secret-0123456789",
		Issuer:   "finhealth-integration",
		TokenTTL: time.Hour,
	}, log)

	auth := service.NewAuthService(users, companies, tokens, log)
	analytics := service.NewAnalyticsService(financials, summaries, benchmarks, companies, cache, metrics, log)
	statements := service.NewStatementService(financials, summaries, reports, analytics, cache, recorder, metrics, log)

	reg, err := auth.Register(ctx, &dto.RegisterRequest{
		Email:       "owner@pipeline.test",
		Password:    "s3cret-pass",
		FullName:    "Pipeline Owner",
		CompanyName: "Pipeline Traders",
		Industry:    "Retail",
	})
	require.NoError(t, err)
	require.NotNil(t, reg.User.DefaultCompanyID)
	companyID := *reg.User.DefaultCompanyID

	csv := monthlyStatement(6)
	upload, err := statements.Upload(ctx, companyID, reg.User.ID, "fy2025.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, constants.FormatMonthly, upload.Format)
	assert.Equal(t, 6, upload.RowsRead)
	assert.False(t, upload.Duplicate)

	// Every summary kind must be computable and stored.
	for _, kind := range []models.SummaryKind{
		models.SummaryHealth, models.SummaryCredit, models.SummaryRisk,
		models.SummaryForecast, models.SummaryBenchmark,
	} {
		_, err := summaries.Find(ctx, companyID, kind)
		assert.NoError(t, err, "summary %s", kind)
	}

	doc, err := analytics.Health(ctx, companyID)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "health_score")

	// Re-uploading the identical file short-circuits on the checksum.
	dup, err := statements.Upload(ctx, companyID, reg.User.ID, "fy2025.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)
	assert.Equal(t, upload.DocumentID, dup.DocumentID)

	page, _, err := financials.ListMonthlySummariesPage(ctx, companyID, 12, 0)
	require.NoError(t, err)
	assert.Len(t, page, 6)
}

func monthlyStatement(months int) string {
	var b strings.Builder
	b.WriteString("month,revenue,expenses,cogs,net income,cash,receivables,payables,inventory,total assets,total liabilities,equity,current assets,current liabilities,operating cash flow,interest\n")
	for i := 0; i < months; i++ {
		month := time.Date(2025, time.Month(12-months+1+i), 1, 0, 0, 0, 0, time.UTC)
		rev := 100000 + i*5000
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			month.Format("2006-01"),
			rev, rev*70/100, rev*40/100, rev*12/100,
			50000+i*2000, 20000, 15000, 10000,
			300000, 120000, 180000, 90000, 45000,
			rev*15/100, 1200,
		)
	}
	return b.String()
}
