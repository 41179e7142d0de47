package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/pkg/constants"
)

func TestRiskAnalyzerInsufficientData(t *testing.T) {
	result := NewRiskAnalyzer().Analyze(nil)

	assert.True(t, result.InsufficientData)
	assert.Empty(t, result.Components)
	assert.NotEmpty(t, result.Mitigations)
}

func TestRiskAnalyzerHealthyCompany(t *testing.T) {
	result := NewRiskAnalyzer().Analyze(healthyHistory(12))

	require.False(t, result.InsufficientData)
	assert.Equal(t, constants.RiskLow, result.Level)
	assert.InDelta(t, 20, result.Score, 1e-9)
	assert.Empty(t, result.Mitigations)

	for _, name := range []string{"leverage", "liquidity", "profitability", "cash_flow"} {
		component, ok := result.Components[name]
		require.True(t, ok, "missing component %s", name)
		assert.Equal(t, constants.RiskLow, component.Level)
	}
}

func TestRiskAnalyzerDistressedCompany(t *testing.T) {
	result := NewRiskAnalyzer().Analyze(distressedHistory(12))

	require.False(t, result.InsufficientData)
	assert.Equal(t, constants.RiskCritical, result.Level)
	assert.InDelta(t, 90, result.Score, 1e-9)

	assert.Equal(t, 100.0, result.Components["leverage"].Score)
	assert.Equal(t, 100.0, result.Components["liquidity"].Score)
	assert.Equal(t, 100.0, result.Components["profitability"].Score)

	assert.Contains(t, result.Mitigations, "Reduce debt exposure through debt restructuring or equity infusion")
	assert.Contains(t, result.Mitigations, "Improve liquidity by increasing current assets or reducing short-term liabilities")
	assert.Contains(t, result.Mitigations, "Address negative profitability by reducing costs or increasing prices")
}

func TestCashFlowRiskPenalisesNegativeMonths(t *testing.T) {
	// Stable but mostly negative cash flows: the stability band alone
	// would grade Low, the negative-month penalty lifts it.
	history := distressedHistory(6)
	component := cashFlowRisk(history)
	assert.Equal(t, 50.0, component.Score)
	assert.Equal(t, 6.0, component.Details["negative_cash_flow_months"])
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  constants.RiskLevel
	}{
		{0, constants.RiskLow},
		{30, constants.RiskLow},
		{45, constants.RiskModerate},
		{70, constants.RiskHigh},
		{71, constants.RiskCritical},
		{100, constants.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevelFor(tt.score), "score %v", tt.score)
	}
}
