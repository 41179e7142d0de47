package service

import (
	"math"
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// Weight configuration for the composite risk index. Sums to 1.
var riskWeights = map[string]float64{
	"leverage":      0.30,
	"liquidity":     0.25,
	"profitability": 0.25,
	"cash_flow":     0.20,
}

// RiskComponent is one scored risk dimension.
type RiskComponent struct {
	Score   float64            `json:"score"`
	Level   constants.RiskLevel `json:"level"`
	Details map[string]float64 `json:"details"`
}

// RiskResult is the computed risk analysis document. Higher scores mean
// higher risk.
type RiskResult struct {
	Score            float64                  `json:"overall_risk_score"`
	Level            constants.RiskLevel      `json:"overall_risk_level"`
	Components       map[string]RiskComponent `json:"component_breakdown"`
	Mitigations      []string                 `json:"mitigation_actions"`
	MonthsAnalyzed   int                      `json:"months_analyzed"`
	InsufficientData bool                     `json:"insufficient_data,omitempty"`
	ComputedAt       time.Time                `json:"computed_at"`
}

// RiskAnalyzer computes the 0-100 weighted risk index.
type RiskAnalyzer struct{}

// NewRiskAnalyzer creates a RiskAnalyzer.
func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{}
}

// Analyze scores risk over the newest twelve months. Rows must be
// ordered by month ascending. Fewer than two months yields the
// insufficient-data document.
func (a *RiskAnalyzer) Analyze(rows []*models.MonthlySummary) *RiskResult {
	now := time.Now().UTC()
	if len(rows) < 2 {
		return &RiskResult{
			Components:       map[string]RiskComponent{},
			Mitigations:      []string{"Upload at least two months of financial statements for a risk analysis"},
			MonthsAnalyzed:   len(rows),
			InsufficientData: true,
			ComputedAt:       now,
		}
	}

	rows = lastN(rows, 12)
	latest := latestOf(rows)

	components := map[string]RiskComponent{
		"leverage":      leverageRisk(latest),
		"liquidity":     liquidityRisk(latest),
		"profitability": profitabilityRisk(latest),
		"cash_flow":     cashFlowRisk(rows),
	}

	overall := 0.0
	for name, weight := range riskWeights {
		overall += components[name].Score * weight
	}

	return &RiskResult{
		Score:          round2(overall),
		Level:          riskLevelFor(overall),
		Components:     components,
		Mitigations:    mitigationActions(components),
		MonthsAnalyzed: len(rows),
		ComputedAt:     now,
	}
}

func leverageRisk(latest *models.MonthlySummary) RiskComponent {
	debtToEquity := latest.DebtToEquity.InexactFloat64()

	var score float64
	switch {
	case debtToEquity <= 1.0:
		score = 20
	case debtToEquity <= 2.0:
		score = 40
	case debtToEquity <= 3.0:
		score = 70
	default:
		score = 100
	}
	return RiskComponent{
		Score: score,
		Level: riskLevelFor(score),
		Details: map[string]float64{
			"debt_to_equity": round2(debtToEquity),
		},
	}
}

// liquidityRisk assesses on the worse of the current ratio and the
// estimated quick ratio.
func liquidityRisk(latest *models.MonthlySummary) RiskComponent {
	currentRatio := safeDiv(latest.CurrentAssets.InexactFloat64(), latest.CurrentLiabilities.InexactFloat64())
	quickRatio := 0.0
	if currentRatio > 0 {
		quickRatio = currentRatio * 0.6
	}
	effective := math.Min(currentRatio, quickRatio)

	var score float64
	switch {
	case effective >= 1.5:
		score = 20
	case effective >= 1.0:
		score = 40
	case effective >= 0.5:
		score = 70
	default:
		score = 100
	}
	return RiskComponent{
		Score: score,
		Level: riskLevelFor(score),
		Details: map[string]float64{
			"current_ratio": round2(currentRatio),
			"quick_ratio":   round2(quickRatio),
		},
	}
}

func profitabilityRisk(latest *models.MonthlySummary) RiskComponent {
	revenue := latest.Revenue.InexactFloat64()
	netIncome := latest.NetIncome.InexactFloat64()
	netMargin := -1.0
	if revenue > 0 {
		netMargin = netIncome / revenue
	}

	var score float64
	switch {
	case netMargin >= 0.05:
		score = 20
	case netMargin >= 0:
		score = 40
	case netMargin >= -0.05:
		score = 70
	default:
		score = 100
	}
	return RiskComponent{
		Score: score,
		Level: riskLevelFor(score),
		Details: map[string]float64{
			"net_margin": round4(netMargin),
			"net_income": round2(netIncome),
		},
	}
}

// cashFlowRisk bands cash flow volatility, then penalises frequent
// negative months.
func cashFlowRisk(rows []*models.MonthlySummary) RiskComponent {
	cashFlows := cashFlowSeries(rows)
	stability := CoefficientOfVariation(cashFlows)

	negative := 0
	for _, cf := range cashFlows {
		if cf < 0 {
			negative++
		}
	}
	negativeRatio := float64(negative) / float64(len(cashFlows))

	var score float64
	switch {
	case stability <= 0.3:
		score = 20
	case stability <= 0.5:
		score = 40
	case stability <= 0.7:
		score = 70
	default:
		score = 100
	}

	if negativeRatio > 0.5 {
		score = math.Min(100, score+30)
	} else if negativeRatio > 0.25 {
		score = math.Min(100, score+15)
	}

	return RiskComponent{
		Score: score,
		Level: riskLevelFor(score),
		Details: map[string]float64{
			"cash_flow_stability":        round2(stability),
			"negative_cash_flow_months":  float64(negative),
			"total_months":               float64(len(cashFlows)),
		},
	}
}

func riskLevelFor(score float64) constants.RiskLevel {
	switch {
	case score <= 30:
		return constants.RiskLow
	case score <= 50:
		return constants.RiskModerate
	case score <= 70:
		return constants.RiskHigh
	default:
		return constants.RiskCritical
	}
}

func mitigationActions(components map[string]RiskComponent) []string {
	var actions []string

	if lev := components["leverage"]; lev.Score > 50 {
		if lev.Details["debt_to_equity"] > 3 {
			actions = append(actions, "Reduce debt exposure through debt restructuring or equity infusion")
		} else {
			actions = append(actions, "Optimize capital structure to lower debt-to-equity ratio")
		}
	}
	if liq := components["liquidity"]; liq.Score > 50 {
		if liq.Details["current_ratio"] < 1 {
			actions = append(actions, "Improve liquidity by increasing current assets or reducing short-term liabilities")
		} else {
			actions = append(actions, "Strengthen working capital management to improve liquidity ratios")
		}
	}
	if prof := components["profitability"]; prof.Score > 50 {
		if prof.Details["net_margin"] < 0 {
			actions = append(actions, "Address negative profitability by reducing costs or increasing prices")
		} else {
			actions = append(actions, "Enhance profit margins through operational efficiency improvements")
		}
	}
	if cf := components["cash_flow"]; cf.Score > 50 {
		actions = append(actions, "Stabilize operating cash flow through tighter receivables and payables cycles")
	}
	return actions
}
