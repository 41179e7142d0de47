package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finhealth/finhealth/pkg/constants"
)

// FinancialData is a raw statement row as parsed from an upload, one
// per company per month per source document. Monetary values are kept
// as decimals in the company currency.
type FinancialData struct {
	ID                 string          `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID          string          `json:"company_id" gorm:"type:uuid;not null;index:idx_findata_company_month"`
	Month              string          `json:"month" gorm:"size:7;not null;index:idx_findata_company_month"`
	Revenue            decimal.Decimal `json:"revenue" gorm:"type:numeric(18,2)"`
	Expenses           decimal.Decimal `json:"expenses" gorm:"type:numeric(18,2)"`
	COGS               decimal.Decimal `json:"cogs" gorm:"type:numeric(18,2)"`
	NetIncome          decimal.Decimal `json:"net_income" gorm:"type:numeric(18,2)"`
	CashBalance        decimal.Decimal `json:"cash_balance" gorm:"type:numeric(18,2)"`
	Receivables        decimal.Decimal `json:"receivables" gorm:"type:numeric(18,2)"`
	Payables           decimal.Decimal `json:"payables" gorm:"type:numeric(18,2)"`
	Inventory          decimal.Decimal `json:"inventory" gorm:"type:numeric(18,2)"`
	TotalAssets        decimal.Decimal `json:"total_assets" gorm:"type:numeric(18,2)"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities" gorm:"type:numeric(18,2)"`
	Equity             decimal.Decimal `json:"equity" gorm:"type:numeric(18,2)"`
	CurrentAssets      decimal.Decimal `json:"current_assets" gorm:"type:numeric(18,2)"`
	CurrentLiabilities decimal.Decimal `json:"current_liabilities" gorm:"type:numeric(18,2)"`
	OperatingCashFlow  decimal.Decimal `json:"operating_cash_flow" gorm:"type:numeric(18,2)"`
	InterestExpense    decimal.Decimal `json:"interest_expense" gorm:"type:numeric(18,2)"`
	DebtToEquity       decimal.Decimal `json:"debt_to_equity" gorm:"type:numeric(10,2)"`
	DocumentID         *string         `json:"document_id,omitempty" gorm:"type:uuid"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BeforeCreate assigns the primary key.
func (f *FinancialData) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// MonthlySummary is the aggregated view of one company month, upserted
// on every upload. Every analytics engine reads these rows ordered by
// month ascending.
type MonthlySummary struct {
	ID                 string          `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID          string          `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_summary_company_month"`
	Month              string          `json:"month" gorm:"size:7;not null;uniqueIndex:idx_summary_company_month"`
	Revenue            decimal.Decimal `json:"revenue" gorm:"type:numeric(18,2)"`
	Expenses           decimal.Decimal `json:"expenses" gorm:"type:numeric(18,2)"`
	COGS               decimal.Decimal `json:"cogs" gorm:"type:numeric(18,2)"`
	NetIncome          decimal.Decimal `json:"net_income" gorm:"type:numeric(18,2)"`
	CashBalance        decimal.Decimal `json:"cash_balance" gorm:"type:numeric(18,2)"`
	Receivables        decimal.Decimal `json:"receivables" gorm:"type:numeric(18,2)"`
	Payables           decimal.Decimal `json:"payables" gorm:"type:numeric(18,2)"`
	Inventory          decimal.Decimal `json:"inventory" gorm:"type:numeric(18,2)"`
	TotalAssets        decimal.Decimal `json:"total_assets" gorm:"type:numeric(18,2)"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities" gorm:"type:numeric(18,2)"`
	Equity             decimal.Decimal `json:"equity" gorm:"type:numeric(18,2)"`
	CurrentAssets      decimal.Decimal `json:"current_assets" gorm:"type:numeric(18,2)"`
	CurrentLiabilities decimal.Decimal `json:"current_liabilities" gorm:"type:numeric(18,2)"`
	OperatingCashFlow  decimal.Decimal `json:"operating_cash_flow" gorm:"type:numeric(18,2)"`
	InterestExpense    decimal.Decimal `json:"interest_expense" gorm:"type:numeric(18,2)"`
	DebtToEquity       decimal.Decimal `json:"debt_to_equity" gorm:"type:numeric(10,2)"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (m *MonthlySummary) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// UploadedDocument records one statement upload. The SHA-256 checksum
// lets re-uploads of identical files be detected downstream.
type UploadedDocument struct {
	ID         string                    `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID  string                    `json:"company_id" gorm:"type:uuid;not null;index"`
	UploaderID string                    `json:"uploader_id" gorm:"type:uuid;not null"`
	Filename   string                    `json:"filename" gorm:"not null"`
	SHA256     string                    `json:"sha256" gorm:"size:64;index"`
	SizeBytes  int64                     `json:"size_bytes"`
	Format     constants.StatementFormat `json:"format"`
	RowsRead   int                       `json:"rows_read"`
	RowsStored int                       `json:"rows_stored"`
	Status     constants.UploadStatus    `json:"status"`
	Error      string                    `json:"error,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// BeforeCreate assigns the primary key.
func (d *UploadedDocument) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
