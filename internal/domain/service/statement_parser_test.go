package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

const testCompanyID = "22222222-2222-2222-2222-222222222222"

func TestStatementParserMonthlyLayout(t *testing.T) {
	csvData := strings.Join([]string{
		"Month,Revenue,Operating_Expenses,Interest_Expense,Tax,Total_Assets,Total_Liabilities",
		"2024-01,100000,60000,2000,3000,300000,120000",
		"2024-02,110000,62000,2000,3300,310000,118000",
	}, "\n")

	parsed, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.NoError(t, err)

	assert.Equal(t, constants.FormatMonthly, parsed.Format)
	assert.Equal(t, 2, parsed.RowsRead)
	assert.Empty(t, parsed.Warnings)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "2024-02", parsed.LatestMonth())

	first := parsed.Rows[0]
	assert.Equal(t, testCompanyID, first.CompanyID)
	assert.Equal(t, "2024-01", first.Month)
	assert.Equal(t, "100000", first.Revenue.String())
	// 60000 + 2000 interest + 3000 tax.
	assert.Equal(t, "65000", first.Expenses.String())
	assert.Equal(t, "35000", first.NetIncome.String())
	// Equity = assets - liabilities, leverage on total liabilities.
	assert.Equal(t, "180000", first.Equity.String())
	assert.Equal(t, "0.67", first.DebtToEquity.String())
	// Liabilities double as current liabilities when no split exists;
	// current assets fall back to 60% of total assets.
	assert.Equal(t, "120000", first.CurrentLiabilities.String())
	assert.Equal(t, "180000", first.CurrentAssets.String())
	// Operating cash flow defaults to net income.
	assert.Equal(t, "35000", first.OperatingCashFlow.String())
}

func TestStatementParserNegativeEquity(t *testing.T) {
	csvData := strings.Join([]string{
		"month,revenue,operating expenses,total_assets,total_liabilities",
		"2024-01,50000,70000,100000,150000",
	}, "\n")

	parsed, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)

	row := parsed.Rows[0]
	assert.Equal(t, "999.99", row.DebtToEquity.String())
	assert.Equal(t, constants.RiskCritical, LeverageRiskLevel(row.DebtToEquity))
	assert.True(t, row.Equity.IsNegative())
}

func TestStatementParserCurrencyNoise(t *testing.T) {
	csvData := strings.Join([]string{
		"month,revenue,expenses",
		"Jan 2024,\"₹1,50,000\",\"₹90,000\"",
		"Feb 2024,\"$160,000\",\"(5,000)\"",
	}, "\n")

	parsed, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)

	assert.Equal(t, "2024-01", parsed.Rows[0].Month)
	assert.Equal(t, "150000", parsed.Rows[0].Revenue.String())
	assert.Equal(t, "2024-02", parsed.Rows[1].Month)
	assert.Equal(t, "160000", parsed.Rows[1].Revenue.String())
	assert.Equal(t, "-5000", parsed.Rows[1].Expenses.String())
}

func TestStatementParserTransactionalLayout(t *testing.T) {
	csvData := strings.Join([]string{
		"date,category,amount",
		"2024-01-05,Sales Revenue,40000",
		"2024-01-12,Sales Revenue,20000",
		"2024-01-15,Operating Expense,35000",
		"2024-01-20,Loan Interest,1500",
		"2024-01-28,GST Tax,2500",
		"2024-02-03,Sales Revenue,70000",
		"2024-02-14,Operating Expense,38000",
	}, "\n")

	parsed, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.NoError(t, err)

	assert.Equal(t, constants.FormatTransactional, parsed.Format)
	assert.Equal(t, 7, parsed.RowsRead)
	require.Len(t, parsed.Rows, 2)

	jan := parsed.Rows[0]
	assert.Equal(t, "2024-01", jan.Month)
	assert.Equal(t, "60000", jan.Revenue.String())
	// 35000 expenses + 1500 interest + 2500 tax.
	assert.Equal(t, "39000", jan.Expenses.String())
	assert.Equal(t, "21000", jan.NetIncome.String())
	// No balance sheet lines: assets estimated at 3x revenue and
	// liabilities at 40% of assets.
	assert.Equal(t, "180000", jan.TotalAssets.String())
	assert.Equal(t, "72000", jan.CurrentLiabilities.String())

	feb := parsed.Rows[1]
	assert.Equal(t, "2024-02", feb.Month)
	assert.Equal(t, "70000", feb.Revenue.String())
}

func TestStatementParserUnrecognizedCategories(t *testing.T) {
	csvData := strings.Join([]string{
		"date,category,amount",
		"2024-01-05,Sales,40000",
		"2024-01-20,Gardening,500",
	}, "\n")

	parsed, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.NoError(t, err)

	require.Len(t, parsed.Rows, 1)
	assert.Len(t, parsed.Warnings, 1)
	assert.Contains(t, parsed.Warnings[0], "Gardening")
}

func TestStatementParserRejectsUnknownLayout(t *testing.T) {
	csvData := "foo,bar\n1,2\n"

	_, err := NewStatementParser().Parse(strings.NewReader(csvData), testCompanyID)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrUnprocessableStatement.Code, appErr.Code)
}

func TestStatementParserRejectsEmptyFile(t *testing.T) {
	_, err := NewStatementParser().Parse(strings.NewReader(""), testCompanyID)
	require.Error(t, err)
}

func TestCategoryFieldPrecedence(t *testing.T) {
	// Debt service wins over the generic expense keyword.
	assert.Equal(t, "interest_expense", categoryField("loan interest expense"))
	assert.Equal(t, "tax_expense", categoryField("Income Tax"))
	assert.Equal(t, "revenue", categoryField("Product Sales"))
	assert.Equal(t, "expenses", categoryField("operating cost"))
	assert.Equal(t, "receivables", categoryField("trade receivables"))
	assert.Equal(t, "", categoryField("unmapped"))
}

func TestLeverageRiskLevelBands(t *testing.T) {
	tests := []struct {
		de   float64
		want constants.RiskLevel
	}{
		{0.3, constants.RiskLow},
		{1.0, constants.RiskModerate},
		{2.5, constants.RiskHigh},
		{4.0, constants.RiskCritical},
		{999.99, constants.RiskCritical},
	}
	for _, tt := range tests {
		row := summaryRow("2024-01", rowValues{debtToEquity: tt.de})
		assert.Equal(t, tt.want, LeverageRiskLevel(row.DebtToEquity), "d/e %v", tt.de)
	}
}
