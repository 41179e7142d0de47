package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/application/service"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/kms"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/internal/infrastructure/ratelimit"
	"github.com/finhealth/finhealth/internal/interfaces/http/handlers"
	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

type apiEnv struct {
	engine *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 8080, Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: "router-test-secret-router-test", Issuer: "finhealth-test", TokenTTL: time.Hour},
		RateLimit: config.RateLimitConfig{Enabled: true, PerMinute: 100},
	}

	users := postgres.NewUserRepository(db, nop)
	companies := postgres.NewCompanyRepository(db, nop)
	financials := postgres.NewFinancialRepository(db, nop)
	summaries := postgres.NewSummaryRepository(db, nop)
	benchmarks := postgres.NewBenchmarkRepository(db, nop)
	reports := postgres.NewReportRepository(db, nop)
	audits := postgres.NewAuditRepository(db, nop)
	integrations := postgres.NewIntegrationRepository(db, nop)
	preferences := postgres.NewPreferenceRepository(db)

	cache := redis.NewSummaryCache(conn, nop)
	recorder := audit.NewDBRecorder(audits, nil, nop)
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	tracing, err := monitoring.NewTracingManager(&config.TracingConfig{Enabled: false}, nop)
	require.NoError(t, err)
	tokens := crypto.NewTokenManager(&cfg.JWT, nop)
	cipher, err := crypto.NewFieldCipher(&kms.KeyMaterial{Passphrase: "p", Salt: "s"})
	require.NoError(t, err)
	limiter := ratelimit.NewRedisRateLimiter(conn.Client(), &cfg.RateLimit, nop)

	authSvc := service.NewAuthService(users, companies, tokens, nop)
	companySvc := service.NewCompanyService(companies, users, recorder, nop)
	analyticsSvc := service.NewAnalyticsService(financials, summaries, benchmarks, companies, cache, metrics, nop)
	statementSvc := service.NewStatementService(financials, summaries, reports, analyticsSvc, cache, recorder, metrics, nop)
	settingsSvc := service.NewSettingsService(integrations, preferences, audits, cipher, recorder, nop)
	reportSvc := service.NewReportService(reports, nop)

	h := &Handlers{
		Auth:      handlers.NewAuthHandler(authSvc),
		Company:   handlers.NewCompanyHandler(companySvc),
		Data:      handlers.NewDataHandler(statementSvc),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
		Reports:   handlers.NewReportHandler(reportSvc),
		Settings:  handlers.NewSettingsHandler(settingsSvc, companySvc),
		Health:    handlers.NewHealthHandler(map[string]handlers.DependencyChecker{"redis": conn}, nop),
	}
	router := NewRouter(cfg, h, tokens, companies, limiter, tracing, metrics, nop)
	return &apiEnv{engine: router.Engine()}
}

func (e *apiEnv) do(t *testing.T, method, path, token, companyID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if companyID != "" {
		req.Header.Set(constants.HeaderCompanyID, companyID)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var envelope dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// registerVia returns a bearer token and the default company ID.
func registerVia(t *testing.T, env *apiEnv, email string) (string, string) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/auth/register", "", "", gin.H{
		"email":        email,
		"password":     "s3cret-pass",
		"full_name":    "Router Tester",
		"company_name": "Acme Traders",
		"industry":     "Retail",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				DefaultCompanyID string `json:"default_company_id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Data.Token)
	require.NotEmpty(t, payload.Data.User.DefaultCompanyID)
	return payload.Data.Token, payload.Data.User.DefaultCompanyID
}

func uploadCSV(t *testing.T, env *apiEnv, token, companyID, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(constants.HeaderCompanyID, companyID)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func statementCSV(months int) string {
	var b strings.Builder
	b.WriteString("month,revenue,expenses,net income,cash,total assets,total liabilities,equity,current assets,current liabilities,operating cash flow\n")
	for i := 1; i <= months; i++ {
		b.WriteString(fmt.Sprintf("2025-%02d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			i, 90000+i*4000, 55000+i*1000, 14000+i*1500, 40000+i*2500,
			350000, 130000, 220000, 85000, 40000, 16000+i*1200))
	}
	return b.String()
}

func TestRouterRejectsAnonymous(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, constants.ErrCodeUnauthorized, envelope.Error.Code)
	assert.NotEmpty(t, envelope.TraceID)
}

func TestRouterAuthFlow(t *testing.T) {
	env := newAPIEnv(t)
	token, _ := registerVia(t, env, "owner@acme.in")

	w := env.do(t, http.MethodPost, "/api/auth/login", "", "", gin.H{
		"email":    "owner@acme.in",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "owner@acme.in")

	w = env.do(t, http.MethodGet, "/api/auth/me", "garbage.token.here", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterTenantHeaderRequired(t *testing.T) {
	env := newAPIEnv(t)
	token, companyID := registerVia(t, env, "owner@acme.in")

	w := env.do(t, http.MethodGet, "/api/financial-health", token, "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, constants.ErrCodeInvalidRequest, envelope.Error.Code)

	w = env.do(t, http.MethodGet, "/api/financial-health", token, "not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	otherToken, _ := registerVia(t, env, "other@beta.in")
	w = env.do(t, http.MethodGet, "/api/financial-health", otherToken, companyID, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterUploadAndAnalytics(t *testing.T) {
	env := newAPIEnv(t)
	token, companyID := registerVia(t, env, "owner@acme.in")

	w := uploadCSV(t, env, token, companyID, statementCSV(12))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"rows_read":12`)

	for _, path := range []string{
		"/api/financial-health",
		"/api/credit-evaluation",
		"/api/risk-analysis",
		"/api/benchmark",
		"/api/forecast",
		"/api/metrics",
		"/api/dashboard/summary",
	} {
		w = env.do(t, http.MethodGet, path, token, companyID, nil)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", path, w.Body.String())
		envelope := decodeEnvelope(t, w)
		assert.True(t, envelope.Success, path)
	}

	w = env.do(t, http.MethodGet, "/api/reports", token, companyID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "upload_snapshot")
}

func TestRouterDuplicateUpload(t *testing.T) {
	env := newAPIEnv(t)
	token, companyID := registerVia(t, env, "owner@acme.in")

	body := statementCSV(6)
	w := uploadCSV(t, env, token, companyID, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = uploadCSV(t, env, token, companyID, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicate":true`)
}

func TestRouterSettingsFlow(t *testing.T) {
	env := newAPIEnv(t)
	token, companyID := registerVia(t, env, "owner@acme.in")

	w := env.do(t, http.MethodGet, "/api/settings/profile", token, companyID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Traders")

	w = env.do(t, http.MethodPost, "/api/settings/integrations", token, companyID, gin.H{
		"type":        "tally",
		"credentials": gin.H{"api_key": "k"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "api_key")

	w = env.do(t, http.MethodGet, "/api/settings/audit-logs", token, companyID, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRateLimitHeaders(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", "", gin.H{
		"email":    "nobody@x.in",
		"password": "whatever1",
	})
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestRouterNoRouteEnvelope(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/unknown", "", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
}

func TestRouterHealthEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

