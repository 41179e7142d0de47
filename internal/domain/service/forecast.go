package service

import (
	"math"
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// ForecastPoint is one projected month.
type ForecastPoint struct {
	Month     string  `json:"projection_month"`
	Revenue   float64 `json:"projected_revenue"`
	Expenses  float64 `json:"projected_expenses"`
	NetIncome float64 `json:"projected_net_income"`
	CashFlow  float64 `json:"projected_cash_flow"`
}

// ForecastResult is the computed forecast document.
type ForecastResult struct {
	Type               constants.ForecastType `json:"forecast_type"`
	MonthsAhead        int                    `json:"months_ahead"`
	HistoricalMonths   int                    `json:"historical_months_used"`
	Projections        []ForecastPoint        `json:"projections"`
	RunwayMonths       float64                `json:"runway_months"`
	Confidence         float64                `json:"confidence_score"`
	RevenueGrowthRate  float64                `json:"revenue_growth_rate"`
	ExpenseGrowthRate  float64                `json:"expense_growth_rate"`
	CashFlowVolatility float64                `json:"cash_flow_volatility"`
	InsufficientData   bool                   `json:"insufficient_data,omitempty"`
	ComputedAt         time.Time              `json:"computed_at"`
}

// infiniteRunway is the sentinel reported when no cash burn exists.
const infiniteRunway = 999.99

// Forecaster projects revenue, expenses and cash flow forward from
// compound growth rates damped by observed volatility.
type Forecaster struct{}

// NewForecaster creates a Forecaster.
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

// Forecast projects monthsAhead months from the newest six months of
// history. Rows must be ordered by month ascending. Fewer than three
// months yields the insufficient-data document.
func (f *Forecaster) Forecast(rows []*models.MonthlySummary, monthsAhead int, forecastType constants.ForecastType) *ForecastResult {
	now := time.Now().UTC()
	if monthsAhead <= 0 || monthsAhead > constants.ForecastMaxMonths {
		monthsAhead = constants.ForecastDefaultMonths
	}
	if !constants.IsValidForecastType(forecastType) {
		forecastType = constants.ForecastBase
	}
	if len(rows) < 3 {
		return &ForecastResult{
			Type:             forecastType,
			MonthsAhead:      monthsAhead,
			HistoricalMonths: len(rows),
			InsufficientData: true,
			ComputedAt:       now,
		}
	}

	rows = lastN(rows, 6)
	latest := latestOf(rows)

	revenues := revenueSeries(rows)
	expenses := make([]float64, len(rows))
	for i, row := range rows {
		expenses[i] = row.Expenses.InexactFloat64()
	}
	cashFlows := cashFlowSeries(rows)

	revenueGrowth := CompoundGrowthRate(revenues)
	expenseGrowth := CompoundGrowthRate(expenses)
	volatility := CoefficientOfVariation(cashFlows)

	revenueGrowth, expenseGrowth = applyScenario(revenueGrowth, expenseGrowth, forecastType, volatility)

	projections := project(latest.Month, revenues[len(revenues)-1], expenses[len(expenses)-1], revenueGrowth, expenseGrowth, monthsAhead)

	return &ForecastResult{
		Type:               forecastType,
		MonthsAhead:        monthsAhead,
		HistoricalMonths:   len(rows),
		Projections:        projections,
		RunwayMonths:       runwayMonths(cashFlows, projections),
		Confidence:         confidenceScore(len(rows), volatility, forecastType),
		RevenueGrowthRate:  round4(revenueGrowth),
		ExpenseGrowthRate:  round4(expenseGrowth),
		CashFlowVolatility: round4(volatility),
		ComputedAt:         now,
	}
}

// applyScenario damps or boosts the growth rates per forecast type. The
// volatility factor shrinks the adjustment for unstable histories.
func applyScenario(revenueGrowth, expenseGrowth float64, forecastType constants.ForecastType, volatility float64) (float64, float64) {
	factor := math.Min(1.5, math.Max(0.5, 1-volatility))
	switch forecastType {
	case constants.ForecastOptimistic:
		return revenueGrowth * (1 + 0.2*factor), expenseGrowth * (1 - 0.1*factor)
	case constants.ForecastConservative:
		return revenueGrowth * (1 - 0.2*factor), expenseGrowth * (1 + 0.1*factor)
	default:
		return revenueGrowth, expenseGrowth
	}
}

func project(lastMonth string, lastRevenue, lastExpense, revenueGrowth, expenseGrowth float64, monthsAhead int) []ForecastPoint {
	start, err := time.Parse(constants.MonthLayout, lastMonth)
	if err != nil {
		start = time.Now().UTC()
	}

	points := make([]ForecastPoint, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		revenue := lastRevenue * math.Pow(1+revenueGrowth, float64(i))
		expense := lastExpense * math.Pow(1+expenseGrowth, float64(i))
		net := revenue - expense
		points = append(points, ForecastPoint{
			Month:     start.AddDate(0, i, 0).Format(constants.MonthLayout),
			Revenue:   round2(revenue),
			Expenses:  round2(expense),
			NetIncome: round2(net),
			// Operating cash conversion for stable small businesses.
			CashFlow: round2(net * 0.8),
		})
	}
	return points
}

// runwayMonths estimates months of cash left at the observed and
// projected burn rate, infiniteRunway when there is no burn.
func runwayMonths(historicalCashFlows []float64, projections []ForecastPoint) float64 {
	currentCash := math.Max(0, historicalCashFlows[len(historicalCashFlows)-1])

	var negativeSum float64
	negativeCount := 0
	for _, cf := range historicalCashFlows {
		if cf < 0 {
			negativeSum += cf
			negativeCount++
		}
	}

	avgBurn := 0.0
	if negativeCount > 0 {
		avgBurn = math.Abs(negativeSum / float64(negativeCount))
	}

	var projectedNegative float64
	projectedCount := 0
	for _, p := range projections {
		if p.CashFlow < 0 {
			projectedNegative += p.CashFlow
			projectedCount++
		}
	}
	if projectedCount > 0 {
		avgBurn = (avgBurn*float64(negativeCount) + math.Abs(projectedNegative)) / float64(negativeCount+projectedCount)
	}

	if avgBurn == 0 {
		return infiniteRunway
	}
	return round2(currentCash / avgBurn)
}

// confidenceScore starts from data availability, subtracts a volatility
// penalty and scales by scenario aggressiveness. Clamped to 0..100.
func confidenceScore(historyMonths int, volatility float64, forecastType constants.ForecastType) float64 {
	var base float64
	switch {
	case historyMonths >= 6:
		base = 80
	case historyMonths >= 4:
		base = 60
	default:
		base = 40
	}

	base -= math.Min(30, volatility*30)

	switch forecastType {
	case constants.ForecastOptimistic:
		base *= 0.8
	case constants.ForecastConservative:
		base *= 0.9
	}
	return round2(clamp(base, 0, 100))
}
