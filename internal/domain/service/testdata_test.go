package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/finhealth/finhealth/internal/domain/models"
)

// rowValues is a float shorthand for building summary rows in tests.
type rowValues struct {
	revenue            float64
	expenses           float64
	cogs               float64
	netIncome          float64
	cash               float64
	receivables        float64
	payables           float64
	inventory          float64
	totalAssets        float64
	totalLiabilities   float64
	equity             float64
	currentAssets      float64
	currentLiabilities float64
	ocf                float64
	interest           float64
	debtToEquity       float64
}

func summaryRow(month string, v rowValues) *models.MonthlySummary {
	return &models.MonthlySummary{
		CompanyID:          "11111111-1111-1111-1111-111111111111",
		Month:              month,
		Revenue:            decimal.NewFromFloat(v.revenue),
		Expenses:           decimal.NewFromFloat(v.expenses),
		COGS:               decimal.NewFromFloat(v.cogs),
		NetIncome:          decimal.NewFromFloat(v.netIncome),
		CashBalance:        decimal.NewFromFloat(v.cash),
		Receivables:        decimal.NewFromFloat(v.receivables),
		Payables:           decimal.NewFromFloat(v.payables),
		Inventory:          decimal.NewFromFloat(v.inventory),
		TotalAssets:        decimal.NewFromFloat(v.totalAssets),
		TotalLiabilities:   decimal.NewFromFloat(v.totalLiabilities),
		Equity:             decimal.NewFromFloat(v.equity),
		CurrentAssets:      decimal.NewFromFloat(v.currentAssets),
		CurrentLiabilities: decimal.NewFromFloat(v.currentLiabilities),
		OperatingCashFlow:  decimal.NewFromFloat(v.ocf),
		InterestExpense:    decimal.NewFromFloat(v.interest),
		DebtToEquity:       decimal.NewFromFloat(v.debtToEquity),
	}
}

// healthyHistory builds n months of a profitable, liquid, low-leverage
// business growing revenue 5% month over month.
func healthyHistory(n int) []*models.MonthlySummary {
	rows := make([]*models.MonthlySummary, 0, n)
	for i := 0; i < n; i++ {
		revenue := 100000 * math.Pow(1.05, float64(i))
		net := revenue * 0.12
		rows = append(rows, summaryRow(testMonth(i), rowValues{
			revenue:            revenue,
			expenses:           revenue * 0.80,
			cogs:               revenue * 0.55,
			netIncome:          net,
			cash:               50000,
			receivables:        20000,
			payables:           15000,
			inventory:          30000,
			totalAssets:        revenue * 3,
			totalLiabilities:   revenue * 0.5,
			equity:             revenue * 2.5,
			currentAssets:      100000,
			currentLiabilities: 40000,
			ocf:                net,
			interest:           revenue * 0.01,
			debtToEquity:       0.2,
		}))
	}
	return rows
}

// distressedHistory builds n months of a loss-making, over-leveraged
// business with shrinking revenue and negative cash flow.
func distressedHistory(n int) []*models.MonthlySummary {
	rows := make([]*models.MonthlySummary, 0, n)
	for i := 0; i < n; i++ {
		revenue := 80000 * math.Pow(0.96, float64(i))
		net := -revenue * 0.10
		rows = append(rows, summaryRow(testMonth(i), rowValues{
			revenue:            revenue,
			expenses:           revenue * 1.05,
			netIncome:          net,
			totalAssets:        120000,
			totalLiabilities:   200000,
			equity:             -80000,
			currentAssets:      25000,
			currentLiabilities: 90000,
			ocf:                net,
			interest:           4000,
			debtToEquity:       999.99,
		}))
	}
	return rows
}

// testMonth yields sequential month keys starting at January 2024.
func testMonth(i int) string {
	return fmt.Sprintf("2024-%02d", i+1)
}
