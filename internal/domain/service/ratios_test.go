package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/internal/domain/models"
)

func TestRatioCalculatorEmptyHistory(t *testing.T) {
	report := NewRatioCalculator().Compute(nil)
	assert.Equal(t, 0, report.MonthsAnalyzed)
	assert.Empty(t, report.Months)
}

func TestRatioCalculatorMonthMetrics(t *testing.T) {
	row := summaryRow("2024-03", rowValues{
		revenue:            100000,
		expenses:           80000,
		cogs:               60000,
		netIncome:          10000,
		cash:               20000,
		receivables:        10000,
		payables:           12000,
		inventory:          18000,
		totalAssets:        300000,
		equity:             200000,
		currentAssets:      90000,
		currentLiabilities: 45000,
		interest:           2000,
		debtToEquity:       0.5,
	})

	report := NewRatioCalculator().Compute([]*models.MonthlySummary{row})
	require.Len(t, report.Months, 1)
	m := report.Latest

	assert.Equal(t, "2024-03", m.Month)
	assert.InDelta(t, 0.4, m.GrossMargin, 1e-9)
	assert.InDelta(t, 0.2, m.OperatingMargin, 1e-9)
	assert.InDelta(t, 0.1, m.NetMargin, 1e-9)
	assert.InDelta(t, 2.0, m.CurrentRatio, 1e-9)
	assert.InDelta(t, 1.2, m.QuickRatio, 1e-9)
	assert.InDelta(t, 6.0, m.InterestCoverage, 1e-9)
	assert.InDelta(t, 45000, m.WorkingCapital, 1e-9)

	// DIO 9, DSO 3, DPO 6 at 30-day months.
	assert.InDelta(t, 9, m.DaysInventory, 1e-9)
	assert.InDelta(t, 3, m.DaysSales, 1e-9)
	assert.InDelta(t, 6, m.DaysPayables, 1e-9)
	assert.InDelta(t, 6, m.CashConversionCycle, 1e-9)
}

func TestCompoundGrowthRate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"too short", []float64{100}, 0},
		{"zero start", []float64{0, 100}, 0},
		{"doubling over one period", []float64{100, 200}, 1.0},
		{"flat", []float64{100, 100, 100}, 0},
		{"sign flip falls back to simple rate", []float64{100, -50}, -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CompoundGrowthRate(tt.values), 1e-9)
		})
	}
}

func TestCompoundGrowthRateCompounds(t *testing.T) {
	// 10% per period over 4 periods.
	values := []float64{100, 110, 121, 133.1, 146.41}
	assert.InDelta(t, 0.10, CompoundGrowthRate(values), 1e-9)
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Equal(t, 1.0, CoefficientOfVariation([]float64{5}))
	assert.Equal(t, 1.0, CoefficientOfVariation([]float64{0, 0, 0}))
	assert.Equal(t, 1.0, CoefficientOfVariation([]float64{-10, 10}))
	assert.InDelta(t, 0, CoefficientOfVariation([]float64{50, 50, 50}), 1e-9)

	cv := CoefficientOfVariation([]float64{90, 100, 110})
	assert.Greater(t, cv, 0.0)
	assert.Less(t, cv, 0.2)
}

func TestLinearTrend(t *testing.T) {
	slope, intercept := linearTrend([]float64{1, 2, 3})
	assert.InDelta(t, 1, slope, 1e-9)
	assert.InDelta(t, 1, intercept, 1e-9)

	slope, _ = linearTrend([]float64{10, 8, 6, 4})
	assert.InDelta(t, -2, slope, 1e-9)
}
