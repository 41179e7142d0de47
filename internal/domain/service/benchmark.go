package service

import (
	"math"
	"strings"
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// BenchmarkBand is the quartile spread of one metric in an industry
// peer group.
type BenchmarkBand struct {
	IndustryAvg    float64 `json:"industry_avg"`
	TopQuartile    float64 `json:"top_quartile"`
	BottomQuartile float64 `json:"bottom_quartile"`
}

// MetricBenchmark is the comparison result for one metric.
type MetricBenchmark struct {
	Metric           string  `json:"metric"`
	Value            float64 `json:"value"`
	IndustryAvg      float64 `json:"industry_avg"`
	TopQuartile      float64 `json:"top_quartile"`
	BottomQuartile   float64 `json:"bottom_quartile"`
	Percentile       float64 `json:"percentile"`
	Status           string  `json:"status"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// BenchmarkResult is the computed industry comparison document.
type BenchmarkResult struct {
	Industry            constants.Industry `json:"industry_type"`
	IndustryDescription string             `json:"industry_description"`
	Metrics             []MetricBenchmark  `json:"benchmark_results"`
	OverallPercentile   float64            `json:"overall_percentile"`
	MetricsAboveAvg     int                `json:"metrics_above_avg"`
	MetricsBelowAvg     int                `json:"metrics_below_avg"`
	LastMonth           string             `json:"last_updated"`
	MonthsAnalyzed      int                `json:"months_analyzed"`
	InsufficientData    bool               `json:"insufficient_data,omitempty"`
	ComputedAt          time.Time          `json:"computed_at"`
}

// industryDescriptions label each peer group.
var industryDescriptions = map[constants.Industry]string{
	constants.IndustryRetail:        "Retail and consumer goods",
	constants.IndustryManufacturing: "Manufacturing and industrial",
	constants.IndustryServices:      "Professional services and consulting",
	constants.IndustryTechnology:    "Technology and software",
	constants.IndustryGeneral:       "General business across industries",
}

// invertedMetrics are those where a lower value outperforms the peer
// group, so the percentile scale flips.
var invertedMetrics = map[string]bool{
	"debt_to_equity":        true,
	"cash_conversion_cycle": true,
}

// benchmarkMetricOrder fixes the rendering order of the comparison.
var benchmarkMetricOrder = []string{
	"net_profit_margin",
	"gross_margin",
	"operating_margin",
	"current_ratio",
	"quick_ratio",
	"debt_to_equity",
	"revenue_growth_rate",
	"cash_conversion_cycle",
}

// BenchmarkAnalyzer compares a company's metrics against industry
// quartile tables. Seeded database rows override the built-in defaults.
type BenchmarkAnalyzer struct{}

// NewBenchmarkAnalyzer creates a BenchmarkAnalyzer.
func NewBenchmarkAnalyzer() *BenchmarkAnalyzer {
	return &BenchmarkAnalyzer{}
}

// Analyze benchmarks the newest twelve months against the peer group.
// Rows must be ordered by month ascending. industryHint is the
// company's declared industry; when it does not name a known group the
// group is inferred from the financials. overrides replaces default
// bands per metric and may be nil.
func (b *BenchmarkAnalyzer) Analyze(rows []*models.MonthlySummary, industryHint string, overrides map[string]BenchmarkBand) *BenchmarkResult {
	now := time.Now().UTC()
	if len(rows) == 0 {
		return &BenchmarkResult{
			Industry:         constants.IndustryGeneral,
			InsufficientData: true,
			ComputedAt:       now,
		}
	}

	rows = lastN(rows, 12)
	latest := latestOf(rows)

	industry := ResolveIndustry(industryHint, latest)
	metrics := companyMetrics(rows, latest)

	bands := defaultBenchmarks(industry)
	for metric, band := range overrides {
		bands[metric] = band
	}

	var results []MetricBenchmark
	var percentileSum float64
	above, below := 0, 0
	for _, metric := range benchmarkMetricOrder {
		band, ok := bands[metric]
		if !ok {
			continue
		}
		value := metrics[metric]
		percentile := percentileRank(value, band, invertedMetrics[metric])
		status := benchmarkStatus(percentile)
		deviation := 0.0
		if band.IndustryAvg != 0 {
			deviation = (value - band.IndustryAvg) / band.IndustryAvg * 100
		}

		results = append(results, MetricBenchmark{
			Metric:           metric,
			Value:            round4(value),
			IndustryAvg:      band.IndustryAvg,
			TopQuartile:      band.TopQuartile,
			BottomQuartile:   band.BottomQuartile,
			Percentile:       round2(percentile),
			Status:           status,
			DeviationPercent: round2(deviation),
		})
		percentileSum += percentile
		if percentile >= 50 {
			above++
		} else {
			below++
		}
	}

	overall := 0.0
	if len(results) > 0 {
		overall = percentileSum / float64(len(results))
	}

	return &BenchmarkResult{
		Industry:            industry,
		IndustryDescription: industryDescriptions[industry],
		Metrics:             results,
		OverallPercentile:   round2(overall),
		MetricsAboveAvg:     above,
		MetricsBelowAvg:     below,
		LastMonth:           latest.Month,
		MonthsAnalyzed:      len(rows),
		ComputedAt:          now,
	}
}

// ResolveIndustry maps the declared industry string to a peer group, or
// infers one from gross margin, revenue scale and asset base.
func ResolveIndustry(hint string, latest *models.MonthlySummary) constants.Industry {
	switch {
	case containsAny(hint, "retail", "shop", "store", "commerce"):
		return constants.IndustryRetail
	case containsAny(hint, "manufactur", "industrial", "factory"):
		return constants.IndustryManufacturing
	case containsAny(hint, "tech", "software", "saas", "it "):
		return constants.IndustryTechnology
	case containsAny(hint, "service", "consult", "agency"):
		return constants.IndustryServices
	}
	if latest == nil {
		return constants.IndustryGeneral
	}

	revenue := latest.Revenue.InexactFloat64()
	totalAssets := latest.TotalAssets.InexactFloat64()
	grossMargin := safeDiv(revenue-latest.COGS.InexactFloat64(), revenue)
	switch {
	case grossMargin > 0.4 && revenue > 1000000:
		return constants.IndustryTechnology
	case grossMargin > 0.3 && totalAssets > 500000:
		return constants.IndustryManufacturing
	case grossMargin > 0.2 && revenue < 1000000:
		return constants.IndustryServices
	case grossMargin < 0.3:
		return constants.IndustryRetail
	default:
		return constants.IndustryGeneral
	}
}

func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

func companyMetrics(rows []*models.MonthlySummary, latest *models.MonthlySummary) map[string]float64 {
	m := monthMetrics(latest)
	return map[string]float64{
		"net_profit_margin":     m.NetMargin,
		"gross_margin":          m.GrossMargin,
		"operating_margin":      m.OperatingMargin,
		"current_ratio":         m.CurrentRatio,
		"quick_ratio":           m.QuickRatio,
		"debt_to_equity":        m.DebtToEquity,
		"revenue_growth_rate":   CompoundGrowthRate(revenueSeries(rows)),
		"cash_conversion_cycle": m.CashConversionCycle,
	}
}

// percentileRank interpolates value into the quartile band: bottom
// quartile at 25, industry average at 50, top quartile at 75. Inverted
// metrics flip the scale so that outperforming (lower) values land in
// the upper percentiles. Results are clamped to 0..100.
func percentileRank(value float64, band BenchmarkBand, inverted bool) float64 {
	top, avg, bottom := band.TopQuartile, band.IndustryAvg, band.BottomQuartile
	if inverted {
		// Mirror around the average so the regular interpolation applies.
		value = 2*avg - value
		top, bottom = 2*avg-top, 2*avg-bottom
		top, bottom = math.Max(top, bottom), math.Min(top, bottom)
		if bottom > avg {
			bottom = avg
		}
		if top < avg {
			top = avg
		}
	}

	switch {
	case value >= top:
		if top == 0 {
			return 75
		}
		return math.Min(100, 75+math.Min(25, (value-top)/math.Abs(top)*25))
	case value >= avg:
		if top == avg {
			return 50
		}
		return 50 + (value-avg)/(top-avg)*25
	case value >= bottom:
		if avg == bottom {
			return 25
		}
		return 25 + (value-bottom)/(avg-bottom)*25
	default:
		if bottom == 0 {
			return 0
		}
		return clamp(value/bottom*25, 0, 25)
	}
}

func benchmarkStatus(percentile float64) string {
	switch {
	case percentile >= 75:
		return "Top 25%"
	case percentile >= 60:
		return "Above Average"
	case percentile >= 40:
		return "Near Average"
	case percentile >= 25:
		return "Below Average"
	default:
		return "Bottom 25%"
	}
}

// DefaultBenchmarks returns the built-in quartile table for an
// industry. Seeding tools persist these so operators can tune them.
func DefaultBenchmarks(industry constants.Industry) map[string]BenchmarkBand {
	return defaultBenchmarks(industry)
}

// defaultBenchmarks returns the built-in quartile tables per industry.
func defaultBenchmarks(industry constants.Industry) map[string]BenchmarkBand {
	tables := map[constants.Industry]map[string]BenchmarkBand{
		constants.IndustryRetail: {
			"net_profit_margin":     {0.03, 0.06, 0.01},
			"gross_margin":          {0.35, 0.45, 0.25},
			"current_ratio":         {1.5, 2.0, 1.0},
			"debt_to_equity":        {1.2, 0.8, 2.0},
			"revenue_growth_rate":   {0.08, 0.15, 0.02},
			"operating_margin":      {0.06, 0.10, 0.03},
			"quick_ratio":           {0.8, 1.2, 0.5},
			"cash_conversion_cycle": {45, 30, 60},
		},
		constants.IndustryManufacturing: {
			"net_profit_margin":     {0.05, 0.08, 0.02},
			"gross_margin":          {0.30, 0.40, 0.20},
			"current_ratio":         {1.8, 2.5, 1.2},
			"debt_to_equity":        {1.5, 1.0, 2.5},
			"revenue_growth_rate":   {0.06, 0.12, 0.01},
			"operating_margin":      {0.10, 0.15, 0.05},
			"quick_ratio":           {1.0, 1.5, 0.7},
			"cash_conversion_cycle": {60, 45, 90},
		},
		constants.IndustryServices: {
			"net_profit_margin":     {0.12, 0.18, 0.06},
			"gross_margin":          {0.55, 0.65, 0.45},
			"current_ratio":         {1.6, 2.2, 1.1},
			"debt_to_equity":        {0.8, 0.5, 1.5},
			"revenue_growth_rate":   {0.10, 0.20, 0.03},
			"operating_margin":      {0.15, 0.22, 0.08},
			"quick_ratio":           {1.2, 1.8, 0.8},
			"cash_conversion_cycle": {30, 20, 45},
		},
		constants.IndustryTechnology: {
			"net_profit_margin":     {0.15, 0.25, 0.08},
			"gross_margin":          {0.65, 0.75, 0.55},
			"current_ratio":         {2.0, 3.0, 1.3},
			"debt_to_equity":        {0.6, 0.3, 1.2},
			"revenue_growth_rate":   {0.25, 0.40, 0.10},
			"operating_margin":      {0.20, 0.30, 0.10},
			"quick_ratio":           {1.5, 2.5, 1.0},
			"cash_conversion_cycle": {25, 15, 40},
		},
		constants.IndustryGeneral: {
			"net_profit_margin":     {0.08, 0.12, 0.04},
			"gross_margin":          {0.40, 0.50, 0.30},
			"current_ratio":         {1.7, 2.3, 1.2},
			"debt_to_equity":        {1.0, 0.7, 1.8},
			"revenue_growth_rate":   {0.08, 0.15, 0.02},
			"operating_margin":      {0.12, 0.18, 0.06},
			"quick_ratio":           {1.0, 1.5, 0.7},
			"cash_conversion_cycle": {40, 30, 60},
		},
	}

	table, ok := tables[industry]
	if !ok {
		table = tables[constants.IndustryGeneral]
	}
	out := make(map[string]BenchmarkBand, len(table))
	for metric, band := range table {
		out[metric] = band
	}
	return out
}
