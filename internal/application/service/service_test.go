package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/kms"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/pkg/logger"
)

// testEnv wires every service against sqlite and miniredis.
type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	companies  repository.CompanyRepository
	financials repository.FinancialRepository
	summaries  repository.SummaryRepository
	audits     repository.AuditRepository
	cache      redis.SummaryCache
	mr         *miniredis.Miniredis

	auth       *AuthService
	company    *CompanyService
	analytics  *AnalyticsService
	statements *StatementService
	settings   *SettingsService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	nop := logger.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(context.Background(), db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	mr := miniredis.RunT(t)
	conn, err := redis.NewConnection(context.Background(), &config.RedisConfig{Addr: mr.Addr()}, nop)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	cache := redis.NewSummaryCache(conn, nop)

	users := postgres.NewUserRepository(db, nop)
	companies := postgres.NewCompanyRepository(db, nop)
	financials := postgres.NewFinancialRepository(db, nop)
	summaries := postgres.NewSummaryRepository(db, nop)
	benchmarks := postgres.NewBenchmarkRepository(db, nop)
	reports := postgres.NewReportRepository(db, nop)
	audits := postgres.NewAuditRepository(db, nop)
	integrations := postgres.NewIntegrationRepository(db, nop)
	preferences := postgres.NewPreferenceRepository(db)

	recorder := audit.NewDBRecorder(audits, nil, nop)
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())

	tokens := crypto.NewTokenManager(&config.JWTConfig{
		Secret:   "test-secret-test-secret-test-secret",
		Issuer:   "finhealth-test",
		TokenTTL: time.Hour,
	}, nop)

	material := &kms.KeyMaterial{Passphrase: "unit-test-passphrase", Salt: "unit-test-salt"}
	cipher, err := crypto.NewFieldCipher(material)
	require.NoError(t, err)

	analytics := NewAnalyticsService(financials, summaries, benchmarks, companies, cache, metrics, nop)

	return &testEnv{
		db:         db,
		users:      users,
		companies:  companies,
		financials: financials,
		summaries:  summaries,
		audits:     audits,
		cache:      cache,
		mr:         mr,
		auth:       NewAuthService(users, companies, tokens, nop),
		company:    NewCompanyService(companies, users, recorder, nop),
		analytics:  analytics,
		statements: NewStatementService(financials, summaries, reports, analytics, cache, recorder, metrics, nop),
		settings:   NewSettingsService(integrations, preferences, audits, cipher, recorder, nop),
		reports:    NewReportService(reports, nop),
	}
}

// registerOwner creates a user with a company and returns user and
// company IDs.
func registerOwner(t *testing.T, env *testEnv, email string) (string, string) {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:       email,
		Password:    "s3cret-pass",
		FullName:    "Test Owner",
		CompanyName: "Acme Traders",
		Industry:    "Retail",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.DefaultCompanyID)
	return resp.User.ID, *resp.User.DefaultCompanyID
}

// monthlyCSV builds a pre-aggregated statement covering the given
// number of months, ending December 2025.
func monthlyCSV(months int) string {
	var b strings.Builder
	b.WriteString("month,revenue,expenses,cogs,net income,cash,receivables,payables,inventory,total assets,total liabilities,equity,current assets,current liabilities,operating cash flow,interest\n")
	for i := 0; i < months; i++ {
		m := i + 13 - months
		b.WriteString(fmt.Sprintf("2025-%02d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			m,
			100000+i*5000, // revenue
			60000+i*1000,  // expenses
			40000,         // cogs
			15000+i*2000,  // net income
			50000+i*3000,  // cash
			20000, 12000, 15000,
			400000, 150000, 250000,
			90000, 45000,
			18000+i*1500, // operating cash flow
			1200,
		))
	}
	return b.String()
}

func seedMonths(t *testing.T, env *testEnv, companyID string, months int) {
	t.Helper()
	_, err := env.statements.Upload(context.Background(), companyID, uploadSeedUser(t, env), "seed.csv", strings.NewReader(monthlyCSV(months)))
	require.NoError(t, err)
}

func uploadSeedUser(t *testing.T, env *testEnv) string {
	t.Helper()
	user := &models.User{Email: fmt.Sprintf("seed-%s@test.in", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))), PasswordHash: "x", FullName: "Seeder"}
	if err := env.users.Create(context.Background(), user); err != nil {
		existing, ferr := env.users.FindByEmail(context.Background(), user.Email)
		require.NoError(t, ferr)
		return existing.ID
	}
	return user.ID
}
