package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	domainservice "github.com/finhealth/finhealth/internal/domain/service"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/redis"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
	"github.com/finhealth/finhealth/pkg/utils"
)

// summaryCacheKeys maps summary kinds to their Redis prefixes.
var summaryCacheKeys = map[models.SummaryKind]string{
	models.SummaryHealth:    constants.CacheKeyHealth,
	models.SummaryCredit:    constants.CacheKeyCredit,
	models.SummaryRisk:      constants.CacheKeyRisk,
	models.SummaryForecast:  constants.CacheKeyForecast,
	models.SummaryBenchmark: constants.CacheKeyBenchmark,
}

// AnalyticsService serves every computed analytics document through a
// Redis-then-database read-through: cached payload, else stored summary
// row, else recompute from monthly summaries and persist both.
type AnalyticsService struct {
	financials repository.FinancialRepository
	summaries  repository.SummaryRepository
	benchmarks repository.BenchmarkRepository
	companies  repository.CompanyRepository

	health    *domainservice.HealthScorer
	credit    *domainservice.CreditScorer
	risk      *domainservice.RiskAnalyzer
	benchmark *domainservice.BenchmarkAnalyzer
	forecast  *domainservice.Forecaster
	ratios    *domainservice.RatioCalculator

	cache   redis.SummaryCache
	metrics *monitoring.Metrics
	logger  logger.Logger
}

// NewAnalyticsService wires the analytics service.
func NewAnalyticsService(
	financials repository.FinancialRepository,
	summaries repository.SummaryRepository,
	benchmarks repository.BenchmarkRepository,
	companies repository.CompanyRepository,
	cache redis.SummaryCache,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		financials: financials,
		summaries:  summaries,
		benchmarks: benchmarks,
		companies:  companies,
		health:     domainservice.NewHealthScorer(),
		credit:     domainservice.NewCreditScorer(),
		risk:       domainservice.NewRiskAnalyzer(),
		benchmark:  domainservice.NewBenchmarkAnalyzer(),
		forecast:   domainservice.NewForecaster(),
		ratios:     domainservice.NewRatioCalculator(),
		cache:      cache,
		metrics:    metrics,
		logger:     log.WithComponent("AnalyticsService"),
	}
}

// Health returns the financial health document.
func (s *AnalyticsService) Health(ctx context.Context, companyID string) (json.RawMessage, error) {
	return s.readThrough(ctx, companyID, models.SummaryHealth)
}

// Credit returns the credit evaluation document.
func (s *AnalyticsService) Credit(ctx context.Context, companyID string) (json.RawMessage, error) {
	return s.readThrough(ctx, companyID, models.SummaryCredit)
}

// Risk returns the risk analysis document.
func (s *AnalyticsService) Risk(ctx context.Context, companyID string) (json.RawMessage, error) {
	return s.readThrough(ctx, companyID, models.SummaryRisk)
}

// Benchmark returns the industry comparison document.
func (s *AnalyticsService) Benchmark(ctx context.Context, companyID string) (json.RawMessage, error) {
	return s.readThrough(ctx, companyID, models.SummaryBenchmark)
}

// Forecast returns the cash-flow projection. Default parameters go
// through the read-through path; custom horizons or scenarios are
// computed fresh and not cached.
func (s *AnalyticsService) Forecast(ctx context.Context, companyID string, query *dto.ForecastQuery) (json.RawMessage, error) {
	monthsAhead := query.MonthsAhead
	forecastType := constants.ForecastType(query.ForecastType)
	if forecastType == "" {
		forecastType = constants.ForecastBase
	}
	if !constants.IsValidForecastType(forecastType) {
		return nil, apperrors.ErrInvalidRequest.WithDescription("forecast_type must be Base, Optimistic or Conservative")
	}
	if monthsAhead < 0 || monthsAhead > constants.ForecastMaxMonths {
		return nil, apperrors.ErrInvalidRequest.WithDescription("months_ahead must be 1..%d", constants.ForecastMaxMonths)
	}

	defaultParams := (monthsAhead == 0 || monthsAhead == constants.ForecastDefaultMonths) &&
		forecastType == constants.ForecastBase
	if defaultParams {
		return s.readThrough(ctx, companyID, models.SummaryForecast)
	}

	rows, err := s.financials.ListMonthlySummaries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result := s.forecast.Forecast(rows, monthsAhead, forecastType)
	s.metrics.RecordEngineCompute(string(models.SummaryForecast), time.Since(start))
	return json.Marshal(result)
}

// Metrics returns the ratio suite, always computed fresh.
func (s *AnalyticsService) Metrics(ctx context.Context, companyID string) (*domainservice.RatioReport, error) {
	rows, err := s.financials.ListMonthlySummaries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.ratios.Compute(rows), nil
}

// Dashboard assembles the landing page headline document.
func (s *AnalyticsService) Dashboard(ctx context.Context, companyID string) (*dto.DashboardSummary, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.financials.ListMonthlySummaries(ctx, companyID)
	if err != nil {
		return nil, err
	}

	summary := &dto.DashboardSummary{
		CompanyID:       companyID,
		Currency:        company.Currency,
		MonthsAvailable: len(rows),
		ComputedAt:      time.Now().UTC(),
	}
	if len(rows) == 0 {
		summary.InsufficientData = true
		return summary, nil
	}

	recent := rows
	if len(recent) > 12 {
		recent = recent[len(recent)-12:]
	}
	latest := recent[len(recent)-1]
	summary.LatestMonth = latest.Month
	summary.LatestRevenue = utils.FormatAmount(latest.Revenue, company.Currency)
	summary.LatestNetIncome = utils.FormatAmount(latest.NetIncome, company.Currency)
	summary.LatestCashFlow = utils.FormatAmount(latest.OperatingCashFlow, company.Currency)

	for _, row := range recent {
		summary.Trend = append(summary.Trend, dto.TrendPoint{
			Month:     row.Month,
			Revenue:   row.Revenue.InexactFloat64(),
			Expenses:  row.Expenses.InexactFloat64(),
			NetIncome: row.NetIncome.InexactFloat64(),
			CashFlow:  row.OperatingCashFlow.InexactFloat64(),
		})
	}

	health := s.health.Score(rows)
	summary.HealthScore = health.Score
	summary.HealthCategory = health.Category
	summary.InsufficientData = health.InsufficientData

	credit := s.credit.Score(rows, domainservice.LeverageRiskLevel(latest.DebtToEquity))
	summary.CreditScore = credit.Score
	summary.CreditRating = credit.Rating

	risk := s.risk.Analyze(rows)
	summary.RiskScore = risk.Score
	summary.RiskLevel = risk.Level

	return summary, nil
}

// Recompute rebuilds one summary kind from monthly data, storing the
// result in both the summary table and the cache.
func (s *AnalyticsService) Recompute(ctx context.Context, companyID string, kind models.SummaryKind) (json.RawMessage, error) {
	rows, err := s.financials.ListMonthlySummaries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.computeAndStore(ctx, companyID, kind, rows)
}

func (s *AnalyticsService) readThrough(ctx context.Context, companyID string, kind models.SummaryKind) (json.RawMessage, error) {
	prefix := summaryCacheKeys[kind]

	if payload, hit, _ := s.cache.Get(ctx, prefix, companyID); hit {
		s.metrics.RecordCacheLookup(string(kind), "hit")
		return payload, nil
	}
	s.metrics.RecordCacheLookup(string(kind), "miss")

	stored, err := s.summaries.Find(ctx, companyID, kind)
	if err == nil {
		payload := json.RawMessage(stored.Payload)
		_ = s.cache.Set(ctx, prefix, companyID, payload)
		return payload, nil
	}

	return s.Recompute(ctx, companyID, kind)
}

// computeAndStore runs the engine for kind and persists the document.
func (s *AnalyticsService) computeAndStore(ctx context.Context, companyID string, kind models.SummaryKind, rows []*models.MonthlySummary) (json.RawMessage, error) {
	start := time.Now()

	var document interface{}
	switch kind {
	case models.SummaryHealth:
		document = s.health.Score(rows)
	case models.SummaryCredit:
		level := constants.RiskLow
		if latest := lastRow(rows); latest != nil {
			level = domainservice.LeverageRiskLevel(latest.DebtToEquity)
		}
		document = s.credit.Score(rows, level)
	case models.SummaryRisk:
		document = s.risk.Analyze(rows)
	case models.SummaryForecast:
		document = s.forecast.Forecast(rows, constants.ForecastDefaultMonths, constants.ForecastBase)
	case models.SummaryBenchmark:
		result, err := s.computeBenchmark(ctx, companyID, rows)
		if err != nil {
			return nil, err
		}
		document = result
	default:
		return nil, apperrors.ErrInternal.WithDescription("unknown summary kind %q", kind)
	}

	s.metrics.RecordEngineCompute(string(kind), time.Since(start))

	payload, err := json.Marshal(document)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}

	if err := s.summaries.Upsert(ctx, &models.ComputedSummary{
		CompanyID:  companyID,
		Kind:       kind,
		Payload:    models.JSON(payload),
		ComputedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, summaryCacheKeys[kind], companyID, payload)
	return payload, nil
}

func (s *AnalyticsService) computeBenchmark(ctx context.Context, companyID string, rows []*models.MonthlySummary) (*domainservice.BenchmarkResult, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	industry := domainservice.ResolveIndustry(company.Industry, lastRow(rows))
	overrides := map[string]domainservice.BenchmarkBand{}
	seeded, err := s.benchmarks.ListForIndustry(ctx, industry)
	if err != nil {
		s.logger.Warn(ctx, "Benchmark overrides unavailable, using defaults",
			logger.String("company_id", companyID),
			logger.String("error", err.Error()),
		)
	}
	for _, row := range seeded {
		overrides[row.Metric] = domainservice.BenchmarkBand{
			IndustryAvg:    row.IndustryAvg,
			TopQuartile:    row.TopQuartile,
			BottomQuartile: row.BottomQuartile,
		}
	}

	return s.benchmark.Analyze(rows, company.Industry, overrides), nil
}

func lastRow(rows []*models.MonthlySummary) *models.MonthlySummary {
	if len(rows) == 0 {
		return nil
	}
	return rows[len(rows)-1]
}
