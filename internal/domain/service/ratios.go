// Package service holds the FinHealth analytics engines. Every engine
// is deterministic: it takes ordered monthly summaries and returns a
// computed document, with no I/O of its own.
package service

import (
	"math"

	"github.com/finhealth/finhealth/internal/domain/models"
)

// MonthMetrics is the ratio suite for a single month.
type MonthMetrics struct {
	Month               string  `json:"month"`
	GrossMargin         float64 `json:"gross_margin"`
	OperatingMargin     float64 `json:"operating_margin"`
	NetMargin           float64 `json:"net_margin"`
	ReturnOnAssets      float64 `json:"return_on_assets"`
	ReturnOnEquity      float64 `json:"return_on_equity"`
	CurrentRatio        float64 `json:"current_ratio"`
	QuickRatio          float64 `json:"quick_ratio"`
	CashRatio           float64 `json:"cash_ratio"`
	DebtToEquity        float64 `json:"debt_to_equity"`
	InterestCoverage    float64 `json:"interest_coverage"`
	AssetTurnover       float64 `json:"asset_turnover"`
	ReceivableTurnover  float64 `json:"receivable_turnover"`
	InventoryTurnover   float64 `json:"inventory_turnover"`
	WorkingCapital      float64 `json:"working_capital"`
	DaysInventory       float64 `json:"days_inventory_outstanding"`
	DaysSales           float64 `json:"days_sales_outstanding"`
	DaysPayables        float64 `json:"days_payables_outstanding"`
	CashConversionCycle float64 `json:"cash_conversion_cycle"`
}

// RatioReport is the full ratio suite over a company's history.
type RatioReport struct {
	Months         []MonthMetrics `json:"months"`
	Latest         MonthMetrics   `json:"latest"`
	RevenueGrowth  float64        `json:"revenue_growth_rate"`
	RevenueTrend   float64        `json:"revenue_trend_slope"`
	MonthsAnalyzed int            `json:"months_analyzed"`
}

// RatioCalculator derives the standard ratio suite from monthly summaries.
type RatioCalculator struct{}

// NewRatioCalculator creates a RatioCalculator.
func NewRatioCalculator() *RatioCalculator {
	return &RatioCalculator{}
}

// Compute builds the ratio report. Rows must be ordered by month
// ascending; an empty report is returned when there is no history.
func (c *RatioCalculator) Compute(rows []*models.MonthlySummary) *RatioReport {
	report := &RatioReport{MonthsAnalyzed: len(rows)}
	if len(rows) == 0 {
		return report
	}

	revenues := make([]float64, 0, len(rows))
	for _, row := range rows {
		report.Months = append(report.Months, monthMetrics(row))
		revenues = append(revenues, row.Revenue.InexactFloat64())
	}
	report.Latest = report.Months[len(report.Months)-1]
	report.RevenueGrowth = CompoundGrowthRate(revenues)
	report.RevenueTrend, _ = linearTrend(revenues)
	return report
}

func monthMetrics(row *models.MonthlySummary) MonthMetrics {
	revenue := row.Revenue.InexactFloat64()
	expenses := row.Expenses.InexactFloat64()
	cogs := row.COGS.InexactFloat64()
	netIncome := row.NetIncome.InexactFloat64()
	cash := row.CashBalance.InexactFloat64()
	receivables := row.Receivables.InexactFloat64()
	payables := row.Payables.InexactFloat64()
	inventory := row.Inventory.InexactFloat64()
	assets := row.TotalAssets.InexactFloat64()
	equity := row.Equity.InexactFloat64()
	currentAssets := row.CurrentAssets.InexactFloat64()
	currentLiabilities := row.CurrentLiabilities.InexactFloat64()
	interest := row.InterestExpense.InexactFloat64()

	m := MonthMetrics{
		Month:          row.Month,
		DebtToEquity:   row.DebtToEquity.InexactFloat64(),
		WorkingCapital: currentAssets - currentLiabilities,
	}

	m.GrossMargin = safeDiv(revenue-cogs, revenue)
	m.OperatingMargin = safeDiv(revenue-expenses, revenue)
	m.NetMargin = safeDiv(netIncome, revenue)
	m.ReturnOnAssets = safeDiv(netIncome, assets)
	m.ReturnOnEquity = safeDiv(netIncome, equity)
	m.CurrentRatio = safeDiv(currentAssets, currentLiabilities)
	// Quick assets are estimated at 60% of current assets when a full
	// breakdown is unavailable.
	m.QuickRatio = m.CurrentRatio * 0.6
	m.CashRatio = safeDiv(cash, currentLiabilities)
	m.InterestCoverage = safeDiv(netIncome+interest, interest)
	m.AssetTurnover = safeDiv(revenue, assets)
	m.ReceivableTurnover = safeDiv(revenue, receivables)
	m.InventoryTurnover = safeDiv(cogs, inventory)
	m.DaysInventory = safeDiv(inventory, cogs) * 30
	m.DaysSales = safeDiv(receivables, revenue) * 30
	m.DaysPayables = safeDiv(payables, cogs) * 30
	m.CashConversionCycle = m.DaysInventory + m.DaysSales - m.DaysPayables
	return m
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// CompoundGrowthRate returns the compound per-period growth rate over
// values, zero when the series is too short or starts at zero.
func CompoundGrowthRate(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	periods := float64(len(values) - 1)
	ratio := values[len(values)-1] / values[0]
	if ratio <= 0 {
		// A sign flip has no meaningful compound rate; fall back to the
		// simple per-period rate.
		return (values[len(values)-1] - values[0]) / math.Abs(values[0]) / periods
	}
	return math.Pow(ratio, 1/periods) - 1
}

// CoefficientOfVariation returns population stddev over |mean|. A
// degenerate series (short, all-zero or zero-mean) reports 1.0, the
// maximum-instability sentinel.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 || allZero(values) {
		return 1.0
	}
	mean := meanOf(values)
	if mean == 0 {
		return 1.0
	}
	return stddev(values) / math.Abs(mean)
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	mean := meanOf(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

// linearTrend fits y = slope*x + intercept over values by ordinary
// least squares with x = 0..n-1.
func linearTrend(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, meanOf(values)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// latestOf returns the newest row, nil for an empty slice.
func latestOf(rows []*models.MonthlySummary) *models.MonthlySummary {
	if len(rows) == 0 {
		return nil
	}
	return rows[len(rows)-1]
}

// revenueSeries extracts revenue values ordered oldest to newest.
func revenueSeries(rows []*models.MonthlySummary) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row.Revenue.InexactFloat64()
	}
	return out
}

// cashFlowSeries extracts operating cash flow values oldest to newest.
func cashFlowSeries(rows []*models.MonthlySummary) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row.OperatingCashFlow.InexactFloat64()
	}
	return out
}

// lastN returns the newest n rows preserving ascending order.
func lastN(rows []*models.MonthlySummary, n int) []*models.MonthlySummary {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
