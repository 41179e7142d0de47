package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/pkg/constants"
)

func TestForecasterInsufficientData(t *testing.T) {
	result := NewForecaster().Forecast(healthyHistory(2), 6, constants.ForecastBase)

	assert.True(t, result.InsufficientData)
	assert.Equal(t, 2, result.HistoricalMonths)
	assert.Empty(t, result.Projections)
}

func TestForecasterBaseProjections(t *testing.T) {
	rows := healthyHistory(12)
	result := NewForecaster().Forecast(rows, 6, constants.ForecastBase)

	require.False(t, result.InsufficientData)
	require.Len(t, result.Projections, 6)
	assert.Equal(t, constants.ForecastBase, result.Type)
	// Only the newest six months feed the growth rates.
	assert.Equal(t, 6, result.HistoricalMonths)
	assert.InDelta(t, 0.05, result.RevenueGrowthRate, 1e-3)

	first := result.Projections[0]
	assert.Equal(t, "2025-01", first.Month)
	lastRevenue := rows[len(rows)-1].Revenue.InexactFloat64()
	assert.InDelta(t, lastRevenue*1.05, first.Revenue, lastRevenue*0.01)
	assert.InDelta(t, first.Revenue-first.Expenses, first.NetIncome, 0.01)
	assert.InDelta(t, first.NetIncome*0.8, first.CashFlow, 0.01)

	assert.Equal(t, "2025-06", result.Projections[5].Month)
	// Revenue keeps compounding month over month.
	assert.Greater(t, result.Projections[5].Revenue, first.Revenue)
}

func TestForecasterScenarios(t *testing.T) {
	rows := healthyHistory(12)
	base := NewForecaster().Forecast(rows, 6, constants.ForecastBase)
	optimistic := NewForecaster().Forecast(rows, 6, constants.ForecastOptimistic)
	conservative := NewForecaster().Forecast(rows, 6, constants.ForecastConservative)

	assert.Greater(t, optimistic.RevenueGrowthRate, base.RevenueGrowthRate)
	assert.Less(t, conservative.RevenueGrowthRate, base.RevenueGrowthRate)
	assert.Greater(t, optimistic.Projections[5].Revenue, base.Projections[5].Revenue)
	assert.Less(t, conservative.Projections[5].Revenue, base.Projections[5].Revenue)

	assert.Less(t, optimistic.Confidence, base.Confidence)
	assert.Less(t, conservative.Confidence, base.Confidence)
}

func TestForecasterRunway(t *testing.T) {
	// No burn anywhere: runway reports the infinite sentinel.
	healthy := NewForecaster().Forecast(healthyHistory(12), 6, constants.ForecastBase)
	assert.Equal(t, 999.99, healthy.RunwayMonths)

	// Burning cash with no reserves: runway is exhausted.
	distressed := NewForecaster().Forecast(distressedHistory(12), 6, constants.ForecastBase)
	assert.Equal(t, 0.0, distressed.RunwayMonths)
}

func TestForecasterConfidenceBounds(t *testing.T) {
	for _, rows := range [][]int{{3}, {4}, {6}, {12}} {
		result := NewForecaster().Forecast(healthyHistory(rows[0]), 6, constants.ForecastBase)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 100.0)
	}

	short := NewForecaster().Forecast(healthyHistory(3), 6, constants.ForecastBase)
	long := NewForecaster().Forecast(healthyHistory(12), 6, constants.ForecastBase)
	assert.Greater(t, long.Confidence, short.Confidence)
}

func TestForecasterInputNormalization(t *testing.T) {
	rows := healthyHistory(6)

	zero := NewForecaster().Forecast(rows, 0, constants.ForecastBase)
	assert.Len(t, zero.Projections, constants.ForecastDefaultMonths)

	tooLong := NewForecaster().Forecast(rows, constants.ForecastMaxMonths+1, constants.ForecastBase)
	assert.Len(t, tooLong.Projections, constants.ForecastDefaultMonths)

	invalid := NewForecaster().Forecast(rows, 6, constants.ForecastType("Wild"))
	assert.Equal(t, constants.ForecastBase, invalid.Type)
}
