package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/utils"
)

// ParsedStatement is the outcome of parsing one uploaded file.
type ParsedStatement struct {
	Format   constants.StatementFormat
	Rows     []*models.MonthlySummary
	RowsRead int
	Warnings []string
}

// LatestMonth returns the newest month key in the parsed rows.
func (p *ParsedStatement) LatestMonth() string {
	if len(p.Rows) == 0 {
		return ""
	}
	return p.Rows[len(p.Rows)-1].Month
}

// criticalDebtToEquity is stored when equity is zero or negative, so
// leverage screens always land in the critical band.
var criticalDebtToEquity = decimal.NewFromFloat(999.99)

// fieldAliases maps canonical statement fields to the column headings
// seen in accounting exports. Matching is case-insensitive.
var fieldAliases = map[string][]string{
	"revenue":             {"revenue", "sales", "turnover", "total revenue", "net sales"},
	"expenses":            {"expenses", "operating_expenses", "operating expenses", "total expenses", "other expenses"},
	"cogs":                {"cogs", "cost of goods sold", "cost of sales"},
	"interest_expense":    {"interest", "interest_expense", "interest expense", "finance cost"},
	"tax_expense":         {"tax", "tax_expense", "income tax", "tax expense"},
	"net_income":          {"net income", "net_income", "net profit", "profit after tax"},
	"cash_balance":        {"cash", "cash_flow", "cash and equivalents", "bank balance", "cash balance"},
	"receivables":         {"accounts_receivable", "accounts receivable", "receivables", "debtors"},
	"payables":            {"accounts_payable", "accounts payable", "payables", "creditors"},
	"inventory":           {"inventory", "stock"},
	"total_assets":        {"total_assets", "total assets", "assets"},
	"total_liabilities":   {"total_liabilities", "total liabilities", "liabilities"},
	"current_assets":      {"current_assets", "current assets"},
	"current_liabilities": {"current_liabilities", "current liabilities"},
	"equity":              {"equity", "shareholders equity", "owners equity"},
	"operating_cash_flow": {"operating cash flow", "operating_cash_flow", "ocf"},
	"short_term_debt":     {"short_term_debt", "short term debt", "current debt"},
	"long_term_debt":      {"long_term_debt", "long term debt", "long term loans"},
}

// StatementParser turns uploaded CSV statements into monthly summary
// rows. Two layouts are accepted: a pre-aggregated monthly sheet with
// one row per month, and a transactional ledger with date, category
// and amount columns that is aggregated here.
type StatementParser struct{}

// NewStatementParser creates a StatementParser.
func NewStatementParser() *StatementParser {
	return &StatementParser{}
}

// Parse reads a CSV statement and returns rows for every month found,
// ordered by month ascending. companyID is stamped on every row.
func (p *StatementParser) Parse(r io.Reader, companyID string) (*ParsedStatement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.ErrUnprocessableStatement.WithError(err).WithDescription("file is empty or not a readable CSV")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}

	switch {
	case hasColumns(columns, "month", "revenue"):
		return p.parseMonthly(reader, columns, companyID)
	case hasColumns(columns, "date", "category", "amount"):
		return p.parseTransactional(reader, columns, companyID)
	default:
		return nil, apperrors.ErrUnprocessableStatement.
			WithDescription("unrecognized layout: expected month/revenue columns or date/category/amount columns").
			WithDetail("columns", strings.Join(header, ","))
	}
}

func (p *StatementParser) parseMonthly(reader *csv.Reader, columns map[string]int, companyID string) (*ParsedStatement, error) {
	result := &ParsedStatement{Format: constants.FormatMonthly}
	byMonth := map[string]*monthAccumulator{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", result.RowsRead+2, err))
			continue
		}
		result.RowsRead++

		month, ok := utils.NormalizeMonth(cell(record, columns, "month"))
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unparseable month %q", result.RowsRead+1, cell(record, columns, "month")))
			continue
		}

		acc := &monthAccumulator{fields: map[string]decimal.Decimal{}}
		for field, aliases := range fieldAliases {
			for _, alias := range aliases {
				idx, found := columns[alias]
				if !found {
					continue
				}
				v, perr := utils.ParseAmount(record[idx])
				if perr != nil {
					result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: bad %s value %q", result.RowsRead+1, field, record[idx]))
					break
				}
				acc.fields[field] = v
				break
			}
		}
		byMonth[month] = acc
	}

	if len(byMonth) == 0 {
		return nil, apperrors.ErrUnprocessableStatement.WithDescription("no usable rows found in monthly statement")
	}

	result.Rows = buildRows(byMonth, companyID)
	return result, nil
}

// transactional ledgers carry one line per entry; category keywords
// route each amount into a statement field before monthly aggregation.
func (p *StatementParser) parseTransactional(reader *csv.Reader, columns map[string]int, companyID string) (*ParsedStatement, error) {
	result := &ParsedStatement{Format: constants.FormatTransactional}
	byMonth := map[string]*monthAccumulator{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", result.RowsRead+2, err))
			continue
		}
		result.RowsRead++

		month, ok := utils.NormalizeMonth(cell(record, columns, "date"))
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unparseable date %q", result.RowsRead+1, cell(record, columns, "date")))
			continue
		}

		amount, err := utils.ParseAmount(cell(record, columns, "amount"))
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: bad amount %q", result.RowsRead+1, cell(record, columns, "amount")))
			continue
		}

		field := categoryField(cell(record, columns, "category"))
		if field == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unrecognized category %q", result.RowsRead+1, cell(record, columns, "category")))
			continue
		}

		acc, exists := byMonth[month]
		if !exists {
			acc = &monthAccumulator{fields: map[string]decimal.Decimal{}}
			byMonth[month] = acc
		}
		acc.fields[field] = acc.fields[field].Add(amount)
	}

	if len(byMonth) == 0 {
		return nil, apperrors.ErrUnprocessableStatement.WithDescription("no usable rows found in transactional ledger")
	}

	result.Rows = buildRows(byMonth, companyID)
	return result, nil
}

// categoryField maps a free-text ledger category onto a statement
// field by keyword. Order matters: "loan interest expense" is debt
// service, not an operating expense, so debt wins over expense.
func categoryField(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	switch {
	case strings.Contains(c, "loan") || strings.Contains(c, "debt") || strings.Contains(c, "interest"):
		return "interest_expense"
	case strings.Contains(c, "tax"):
		return "tax_expense"
	case strings.Contains(c, "revenue") || strings.Contains(c, "sales") || strings.Contains(c, "income"):
		return "revenue"
	case strings.Contains(c, "expense") || strings.Contains(c, "cost") || strings.Contains(c, "operating"):
		return "expenses"
	case strings.Contains(c, "receivable"):
		return "receivables"
	case strings.Contains(c, "payable"):
		return "payables"
	case strings.Contains(c, "inventory"):
		return "inventory"
	case strings.Contains(c, "asset"):
		return "total_assets"
	case strings.Contains(c, "liabilit"):
		return "total_liabilities"
	case strings.Contains(c, "cash"):
		return "cash_balance"
	case strings.Contains(c, "equity"):
		return "equity"
	}
	return ""
}

type monthAccumulator struct {
	fields map[string]decimal.Decimal
}

// buildRows converts accumulated field maps into summary rows with
// derived fields filled in, sorted by month ascending.
func buildRows(byMonth map[string]*monthAccumulator, companyID string) []*models.MonthlySummary {
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	rows := make([]*models.MonthlySummary, 0, len(months))
	for _, month := range months {
		rows = append(rows, deriveRow(month, byMonth[month].fields, companyID))
	}
	return rows
}

// deriveRow fills the gaps a real-world export leaves: expense and
// profit totals, balance-sheet estimates when only partial columns are
// present, and the leverage ratio with its negative-equity sentinel.
func deriveRow(month string, f map[string]decimal.Decimal, companyID string) *models.MonthlySummary {
	revenue := f["revenue"]

	expenses := f["expenses"]
	totalExpenses := expenses.Add(f["interest_expense"]).Add(f["tax_expense"])

	netIncome, hasNet := f["net_income"]
	if !hasNet {
		netIncome = revenue.Sub(totalExpenses)
	}

	totalAssets := f["total_assets"]
	if totalAssets.IsZero() && revenue.IsPositive() {
		// Assets run around 3x monthly revenue for small trading books.
		totalAssets = revenue.Mul(decimal.NewFromInt(3))
	}

	totalLiabilities := f["total_liabilities"]
	currentLiabilities, hasCurLiab := f["current_liabilities"]
	if !hasCurLiab || currentLiabilities.IsZero() {
		if !totalLiabilities.IsZero() {
			currentLiabilities = totalLiabilities
		} else {
			currentLiabilities = totalAssets.Mul(decimal.NewFromFloat(0.4))
		}
	}
	if totalLiabilities.IsZero() {
		totalLiabilities = currentLiabilities
	}

	currentAssets, hasCurAssets := f["current_assets"]
	if !hasCurAssets || currentAssets.IsZero() {
		components := f["cash_balance"].Add(f["receivables"]).Add(f["inventory"])
		if !components.IsZero() {
			currentAssets = components
		} else {
			currentAssets = totalAssets.Mul(decimal.NewFromFloat(0.6))
		}
	}

	equity, hasEquity := f["equity"]
	if !hasEquity || equity.IsZero() {
		equity = totalAssets.Sub(totalLiabilities)
	}

	totalDebt := f["short_term_debt"].Add(f["long_term_debt"])
	if totalDebt.IsZero() {
		totalDebt = totalLiabilities
	}

	var debtToEquity decimal.Decimal
	if equity.Sign() <= 0 {
		debtToEquity = criticalDebtToEquity
	} else {
		debtToEquity = totalDebt.DivRound(equity, 2)
	}

	ocf, hasOCF := f["operating_cash_flow"]
	if !hasOCF {
		ocf = netIncome
	}

	return &models.MonthlySummary{
		CompanyID:          companyID,
		Month:              month,
		Revenue:            revenue,
		Expenses:           totalExpenses,
		COGS:               f["cogs"],
		NetIncome:          netIncome,
		CashBalance:        f["cash_balance"],
		Receivables:        f["receivables"],
		Payables:           f["payables"],
		Inventory:          f["inventory"],
		TotalAssets:        totalAssets,
		TotalLiabilities:   totalLiabilities,
		Equity:             equity,
		CurrentAssets:      currentAssets,
		CurrentLiabilities: currentLiabilities,
		OperatingCashFlow:  ocf,
		InterestExpense:    f["interest_expense"],
		DebtToEquity:       debtToEquity,
	}
}

// LeverageRiskLevel grades the stored debt to equity ratio. The
// sentinel value for non-positive equity grades Critical.
func LeverageRiskLevel(debtToEquity decimal.Decimal) constants.RiskLevel {
	de := debtToEquity.InexactFloat64()
	switch {
	case de <= 0.5:
		return constants.RiskLow
	case de <= 1.5:
		return constants.RiskModerate
	case de <= 3:
		return constants.RiskHigh
	default:
		return constants.RiskCritical
	}
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(name, "\uFEFF")))
}

func hasColumns(columns map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := columns[n]; !ok {
			return false
		}
	}
	return true
}

func cell(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
