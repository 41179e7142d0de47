package service

import (
	"math"
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// Weight configuration for the composite health score. Sums to 1.
var healthWeights = map[string]float64{
	"profitability": 0.30,
	"liquidity":     0.20,
	"leverage":      0.25,
	"cash_flow":     0.15,
	"growth":        0.10,
}

// HealthResult is the computed financial health document.
type HealthResult struct {
	Score            float64                   `json:"health_score"`
	Category         constants.HealthCategory  `json:"health_category"`
	ComponentScores  map[string]float64        `json:"component_scores"`
	ComponentDetails HealthComponentDetails    `json:"component_details"`
	Recommendations  []string                  `json:"improvement_recommendations"`
	MonthsAnalyzed   int                       `json:"months_analyzed"`
	InsufficientData bool                      `json:"insufficient_data,omitempty"`
	ComputedAt       time.Time                 `json:"computed_at"`
}

// HealthComponentDetails carries the raw inputs behind each component.
type HealthComponentDetails struct {
	NetMargin         float64 `json:"net_margin"`
	CurrentRatio      float64 `json:"current_ratio"`
	DebtToEquity      float64 `json:"debt_to_equity"`
	CashFlowStability float64 `json:"cash_flow_stability"`
	RevenueGrowthRate float64 `json:"revenue_growth_rate"`
}

// HealthScorer computes the 0-100 weighted financial health score.
type HealthScorer struct{}

// NewHealthScorer creates a HealthScorer.
func NewHealthScorer() *HealthScorer {
	return &HealthScorer{}
}

// Score computes the composite health score over the newest twelve
// months. Rows must be ordered by month ascending. Fewer than two
// months yields the insufficient-data document.
func (s *HealthScorer) Score(rows []*models.MonthlySummary) *HealthResult {
	now := time.Now().UTC()
	if len(rows) < 2 {
		return &HealthResult{
			Category:         constants.HealthInsufficient,
			ComponentScores:  map[string]float64{},
			Recommendations:  []string{"Upload at least two months of financial statements to compute a health score"},
			MonthsAnalyzed:   len(rows),
			InsufficientData: true,
			ComputedAt:       now,
		}
	}

	rows = lastN(rows, 12)
	latest := latestOf(rows)

	revenues := revenueSeries(rows)
	cashFlows := cashFlowSeries(rows)
	netIncomes := make([]float64, len(rows))
	for i, row := range rows {
		netIncomes[i] = row.NetIncome.InexactFloat64()
	}

	netMargin := safeDiv(latest.NetIncome.InexactFloat64(), latest.Revenue.InexactFloat64())
	currentRatio := safeDiv(latest.CurrentAssets.InexactFloat64(), latest.CurrentLiabilities.InexactFloat64())
	debtToEquity := latest.DebtToEquity.InexactFloat64()

	scores := map[string]float64{
		"profitability": profitabilityHealthScore(netMargin, netIncomes),
		"liquidity":     liquidityHealthScore(currentRatio),
		"leverage":      leverageHealthScore(debtToEquity),
		"cash_flow":     cashFlowHealthScore(cashFlows),
		"growth":        growthHealthScore(revenues),
	}

	composite := 0.0
	for component, weight := range healthWeights {
		composite += scores[component] * weight
	}
	for component := range scores {
		scores[component] = round2(scores[component])
	}

	return &HealthResult{
		Score:           round2(composite),
		Category:        categorizeHealth(composite),
		ComponentScores: scores,
		ComponentDetails: HealthComponentDetails{
			NetMargin:         round4(netMargin),
			CurrentRatio:      round2(currentRatio),
			DebtToEquity:      round2(debtToEquity),
			CashFlowStability: round2(CoefficientOfVariation(cashFlows)),
			RevenueGrowthRate: round4(CompoundGrowthRate(revenues)),
		},
		Recommendations: healthRecommendations(scores, netMargin, currentRatio, debtToEquity),
		MonthsAnalyzed:  len(rows),
		ComputedAt:      now,
	}
}

// profitabilityHealthScore bands the net margin and adds a stability
// bonus of up to 20 points for low income volatility.
func profitabilityHealthScore(netMargin float64, netIncomes []float64) float64 {
	var base float64
	switch {
	case netMargin >= 0.15:
		base = 100
	case netMargin >= 0.08:
		base = 80
	case netMargin >= 0.03:
		base = 60
	case netMargin >= 0:
		base = 40
	default:
		base = 20
	}
	if len(netIncomes) > 1 {
		volatility := CoefficientOfVariation(netIncomes)
		bonus := math.Max(0, (0.5-volatility)*40)
		base = math.Min(100, base+bonus)
	}
	return base
}

func liquidityHealthScore(currentRatio float64) float64 {
	switch {
	case currentRatio >= 2.0:
		return 100
	case currentRatio >= 1.5:
		return 80
	case currentRatio >= 1.0:
		return 60
	case currentRatio >= 0.5:
		return 40
	default:
		return 20
	}
}

// leverageHealthScore is inverse banded: lower debt-to-equity is better.
func leverageHealthScore(debtToEquity float64) float64 {
	switch {
	case debtToEquity <= 0.3:
		return 100
	case debtToEquity <= 0.7:
		return 80
	case debtToEquity <= 1.5:
		return 60
	case debtToEquity <= 3.0:
		return 40
	default:
		return 20
	}
}

// cashFlowHealthScore scores the share of positive months, then adds a
// stability bonus.
func cashFlowHealthScore(cashFlows []float64) float64 {
	if len(cashFlows) == 0 {
		return 0
	}
	positive := 0
	for _, cf := range cashFlows {
		if cf > 0 {
			positive++
		}
	}
	positiveRatio := float64(positive) / float64(len(cashFlows))

	var base float64
	switch {
	case positiveRatio >= 0.8:
		base = 80
	case positiveRatio >= 0.6:
		base = 60
	case positiveRatio >= 0.4:
		base = 40
	default:
		base = 20
	}

	stability := CoefficientOfVariation(cashFlows)
	if stability < 0.3 {
		base += 20
	} else if stability < 0.5 {
		base += 10
	}
	return math.Min(100, base)
}

func growthHealthScore(revenues []float64) float64 {
	if len(revenues) < 2 {
		return 50
	}
	growth := CompoundGrowthRate(revenues)
	switch {
	case growth >= 0.20:
		return 100
	case growth >= 0.10:
		return 80
	case growth >= 0.03:
		return 60
	case growth >= 0:
		return 40
	default:
		return 20
	}
}

func categorizeHealth(score float64) constants.HealthCategory {
	switch {
	case score >= 85:
		return constants.HealthExcellent
	case score >= 70:
		return constants.HealthGood
	case score >= 50:
		return constants.HealthModerate
	case score >= 30:
		return constants.HealthWeak
	default:
		return constants.HealthCritical
	}
}

func healthRecommendations(scores map[string]float64, netMargin, currentRatio, debtToEquity float64) []string {
	var recs []string
	if scores["profitability"] < 60 {
		if netMargin < 0.05 {
			recs = append(recs, "Improve profitability by reducing costs or increasing prices")
		} else {
			recs = append(recs, "Enhance profit margin through operational efficiency")
		}
	}
	if scores["liquidity"] < 60 {
		if currentRatio < 1.0 {
			recs = append(recs, "Improve liquidity by increasing current assets or reducing short-term liabilities")
		} else {
			recs = append(recs, "Strengthen liquidity position to meet short-term obligations")
		}
	}
	if scores["leverage"] < 60 {
		if debtToEquity > 2.0 {
			recs = append(recs, "Reduce leverage to strengthen balance sheet and lower financial risk")
		} else {
			recs = append(recs, "Optimize debt structure to improve financial stability")
		}
	}
	if scores["cash_flow"] < 60 {
		recs = append(recs, "Enhance cash flow management through better working capital control")
	}
	if scores["growth"] < 60 {
		recs = append(recs, "Develop growth strategies to expand revenue and market presence")
	}
	return recs
}
