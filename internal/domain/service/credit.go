package service

import (
	"math"
	"time"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
)

// Component point budgets for the 0-900 credit scale.
const (
	creditMaxProfitability = 200
	creditMaxLiquidity     = 200
	creditMaxLeverage      = 200
	creditMaxCashFlow      = 200
	creditMaxGrowth        = 100
)

// CreditResult is the computed credit evaluation document.
type CreditResult struct {
	Score             float64                   `json:"credit_score"`
	Rating            constants.CreditRating    `json:"credit_rating"`
	ComponentScores   map[string]float64        `json:"component_scores"`
	RepaymentCapacity float64                   `json:"repayment_capacity_ratio"`
	Eligibility       constants.LoanEligibility `json:"loan_eligibility_status"`
	RiskFlags         []string                  `json:"risk_flags"`
	ComponentDetails  CreditComponentDetails    `json:"component_details"`
	Recommendations   []string                  `json:"improvement_recommendations"`
	MonthsAnalyzed    int                       `json:"months_analyzed"`
	InsufficientData  bool                      `json:"insufficient_data,omitempty"`
	ComputedAt        time.Time                 `json:"computed_at"`
}

// CreditComponentDetails carries the raw metrics behind the components.
type CreditComponentDetails struct {
	NetMargin         float64 `json:"net_margin"`
	CurrentRatio      float64 `json:"current_ratio"`
	QuickRatio        float64 `json:"quick_ratio"`
	DebtToEquity      float64 `json:"debt_to_equity"`
	CashFlowStability float64 `json:"cash_flow_stability"`
	RevenueGrowthRate float64 `json:"revenue_growth_rate"`
}

// CreditScorer computes the 0-900 credit score with letter rating and
// loan eligibility.
type CreditScorer struct{}

// NewCreditScorer creates a CreditScorer.
func NewCreditScorer() *CreditScorer {
	return &CreditScorer{}
}

// Score evaluates creditworthiness over the newest twelve months. Rows
// must be ordered by month ascending. leverageRiskLevel, when known
// from a prior risk analysis, nudges the leverage component; pass the
// empty string to skip the adjustment. Fewer than two months yields the
// insufficient-data document.
func (s *CreditScorer) Score(rows []*models.MonthlySummary, leverageRiskLevel constants.RiskLevel) *CreditResult {
	now := time.Now().UTC()
	if len(rows) < 2 {
		return &CreditResult{
			Rating:           constants.RatingHighRisk,
			Eligibility:      constants.EligibilityNotEligible,
			ComponentScores:  map[string]float64{},
			RiskFlags:        []string{"Insufficient Data"},
			Recommendations:  []string{"Upload at least two months of financial statements for a credit evaluation"},
			MonthsAnalyzed:   len(rows),
			InsufficientData: true,
			ComputedAt:       now,
		}
	}

	rows = lastN(rows, 12)
	latest := latestOf(rows)

	profitability := creditProfitabilityScore(rows, latest)
	liquidity := creditLiquidityScore(latest)
	leverage := creditLeverageScore(latest, leverageRiskLevel)
	cashFlow := creditCashFlowScore(rows)
	growth := creditGrowthScore(rows)

	total := clamp(profitability+liquidity+leverage+cashFlow+growth, 0, constants.MaxCreditScore)

	repayment := repaymentCapacity(latest)
	currentRatio := safeDiv(latest.CurrentAssets.InexactFloat64(), latest.CurrentLiabilities.InexactFloat64())
	netMargin := safeDiv(latest.NetIncome.InexactFloat64(), latest.Revenue.InexactFloat64())

	flags := creditRiskFlags(profitability, liquidity, leverage, cashFlow, growth, latest, currentRatio)

	return &CreditResult{
		Score:  round2(total),
		Rating: creditRating(total),
		ComponentScores: map[string]float64{
			"profitability": round2(profitability),
			"liquidity":     round2(liquidity),
			"leverage":      round2(leverage),
			"cash_flow":     round2(cashFlow),
			"growth":        round2(growth),
		},
		RepaymentCapacity: round4(repayment),
		Eligibility:       loanEligibility(total, repayment),
		RiskFlags:         flags,
		ComponentDetails: CreditComponentDetails{
			NetMargin:         round4(netMargin),
			CurrentRatio:      round2(currentRatio),
			QuickRatio:        round2(currentRatio * 0.6),
			DebtToEquity:      round2(latest.DebtToEquity.InexactFloat64()),
			CashFlowStability: round2(CoefficientOfVariation(cashFlowSeries(rows))),
			RevenueGrowthRate: round4(CompoundGrowthRate(revenueSeries(rows))),
		},
		Recommendations: creditRecommendations(profitability, liquidity, leverage, cashFlow, growth, flags),
		MonthsAnalyzed:  len(rows),
		ComputedAt:      now,
	}
}

// creditProfitabilityScore bands the latest net margin, then adjusts
// for margin consistency across the history.
func creditProfitabilityScore(rows []*models.MonthlySummary, latest *models.MonthlySummary) float64 {
	revenue := latest.Revenue.InexactFloat64()
	netMargin := -1.0
	if revenue > 0 {
		netMargin = latest.NetIncome.InexactFloat64() / revenue
	}

	var base float64
	switch {
	case netMargin >= 0.15:
		base = 200
	case netMargin >= 0.10:
		base = 170
	case netMargin >= 0.05:
		base = 140
	case netMargin >= 0:
		base = 100
	case netMargin >= -0.05:
		base = 50
	default:
		base = 0
	}

	var margins []float64
	for _, row := range rows {
		if rev := row.Revenue.InexactFloat64(); rev > 0 {
			margins = append(margins, row.NetIncome.InexactFloat64()/rev)
		}
	}
	if len(margins) > 1 {
		volatility := CoefficientOfVariation(margins)
		if volatility < 0.3 {
			base = math.Min(creditMaxProfitability, base+20)
		} else if volatility > 0.7 {
			base = math.Max(0, base-30)
		}
	}
	return base
}

// creditLiquidityScore averages a current-ratio band and an estimated
// quick-ratio band, scaled to the 200 point budget.
func creditLiquidityScore(latest *models.MonthlySummary) float64 {
	currentRatio := safeDiv(latest.CurrentAssets.InexactFloat64(), latest.CurrentLiabilities.InexactFloat64())
	quickRatio := 0.0
	if currentRatio > 0 {
		quickRatio = currentRatio * 0.6
	}

	var currentScore float64
	switch {
	case currentRatio >= 2.0:
		currentScore = 100
	case currentRatio >= 1.5:
		currentScore = 85
	case currentRatio >= 1.0:
		currentScore = 70
	case currentRatio >= 0.5:
		currentScore = 40
	}

	var quickScore float64
	switch {
	case quickRatio >= 1.5:
		quickScore = 100
	case quickRatio >= 1.0:
		quickScore = 85
	case quickRatio >= 0.7:
		quickScore = 70
	case quickRatio >= 0.4:
		quickScore = 40
	}

	return currentScore + quickScore
}

func creditLeverageScore(latest *models.MonthlySummary, riskLevel constants.RiskLevel) float64 {
	debtToEquity := latest.DebtToEquity.InexactFloat64()

	var base float64
	switch {
	case debtToEquity <= 0.3:
		base = 200
	case debtToEquity <= 0.7:
		base = 170
	case debtToEquity <= 1.5:
		base = 140
	case debtToEquity <= 3.0:
		base = 100
	case debtToEquity <= 5.0:
		base = 50
	}

	switch riskLevel {
	case constants.RiskCritical:
		base = math.Max(0, base-50)
	case constants.RiskHigh:
		base = math.Max(0, base-30)
	case constants.RiskLow:
		base = math.Min(creditMaxLeverage, base+20)
	}
	return base
}

// creditCashFlowScore scores positivity, stability and trend of
// operating cash flows, scaled to the 200 point budget.
func creditCashFlowScore(rows []*models.MonthlySummary) float64 {
	cashFlows := cashFlowSeries(rows)
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
		base = 100
	case positiveRatio >= 0.6:
		base = 80
	case positiveRatio >= 0.4:
		base = 60
	case positiveRatio >= 0.2:
		base = 40
	}

	stability := CoefficientOfVariation(cashFlows)
	if stability < 0.3 {
		base = math.Min(100, base+20)
	} else if stability > 0.7 {
		base = math.Max(0, base-30)
	}

	if len(cashFlows) > 1 {
		rising := 0
		for i := 1; i < len(cashFlows); i++ {
			if cashFlows[i] >= cashFlows[i-1] {
				rising++
			}
		}
		trendRatio := float64(rising) / float64(len(cashFlows)-1)
		if trendRatio >= 0.7 {
			base = math.Min(100, base+20)
		} else if trendRatio <= 0.3 {
			base = math.Max(0, base-20)
		}
	}

	return base * 2
}

func creditGrowthScore(rows []*models.MonthlySummary) float64 {
	revenues := revenueSeries(rows)
	if len(revenues) < 2 {
		return 50
	}

	growth := CompoundGrowthRate(revenues)
	var base float64
	switch {
	case growth >= 0.20:
		base = 100
	case growth >= 0.15:
		base = 85
	case growth >= 0.10:
		base = 70
	case growth >= 0.05:
		base = 55
	case growth >= 0:
		base = 40
	case growth >= -0.05:
		base = 25
	}

	if len(revenues) > 2 {
		rising := 0
		for i := 1; i < len(revenues); i++ {
			if revenues[i] > revenues[i-1] {
				rising++
			}
		}
		consistency := float64(rising) / float64(len(revenues)-1)
		if consistency >= 0.8 {
			base = math.Min(creditMaxGrowth, base+10)
		} else if consistency <= 0.4 {
			base = math.Max(0, base-15)
		}
	}
	return base
}

// repaymentCapacity is annualised net income over an estimated annual
// debt service of 10% of current liabilities.
func repaymentCapacity(latest *models.MonthlySummary) float64 {
	netIncome := latest.NetIncome.InexactFloat64()
	annualDebtService := latest.CurrentLiabilities.InexactFloat64() * 0.1
	if annualDebtService == 0 {
		if netIncome > 0 {
			return 1.0
		}
		return 0.0
	}
	return netIncome / annualDebtService
}

func loanEligibility(score, repayment float64) constants.LoanEligibility {
	switch {
	case score >= 600 && repayment >= 1.5:
		return constants.EligibilityEligible
	case score >= 500 && repayment >= 1.0:
		return constants.EligibilityConditional
	default:
		return constants.EligibilityNotEligible
	}
}

func creditRating(score float64) constants.CreditRating {
	switch {
	case score >= 800:
		return constants.RatingAAA
	case score >= 700:
		return constants.RatingAA
	case score >= 600:
		return constants.RatingA
	case score >= 500:
		return constants.RatingBBB
	case score >= 400:
		return constants.RatingBB
	default:
		return constants.RatingHighRisk
	}
}

func creditRiskFlags(profit, liquid, lever, cash, growth float64, latest *models.MonthlySummary, currentRatio float64) []string {
	var flags []string
	if profit < 100 {
		flags = append(flags, "Weak Profitability")
	}
	if liquid < 100 {
		flags = append(flags, "Poor Liquidity")
	}
	if lever < 100 {
		flags = append(flags, "High Leverage")
	}
	if cash < 100 {
		flags = append(flags, "Cash Flow Issues")
	}
	if growth < 50 {
		flags = append(flags, "Low Growth")
	}
	if latest.NetIncome.IsNegative() {
		flags = append(flags, "Negative Profitability")
	}
	if currentRatio > 0 && currentRatio < 1.0 {
		flags = append(flags, "Current Ratio < 1.0")
	}
	if latest.DebtToEquity.InexactFloat64() > 3.0 {
		flags = append(flags, "Debt to Equity > 3.0")
	}
	return flags
}

func creditRecommendations(profit, liquid, lever, cash, growth float64, flags []string) []string {
	var recs []string
	if profit < 100 {
		recs = append(recs, "Improve operating margins through cost optimization")
	}
	if liquid < 100 {
		recs = append(recs, "Enhance liquidity by improving working capital management")
	}
	if lever < 100 {
		recs = append(recs, "Reduce debt levels to improve leverage ratios")
	}
	if cash < 100 {
		recs = append(recs, "Strengthen cash flow generation through operational improvements")
	}
	if growth < 50 {
		recs = append(recs, "Focus on revenue growth strategies and market expansion")
	}
	for _, flag := range flags {
		switch flag {
		case "Negative Profitability":
			recs = append(recs, "Address negative profitability immediately through cost reduction")
		case "Current Ratio < 1.0":
			recs = append(recs, "Increase current assets or reduce short-term liabilities")
		case "Debt to Equity > 3.0":
			recs = append(recs, "Consider equity infusion to reduce leverage")
		}
	}
	return recs
}
