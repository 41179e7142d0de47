package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finhealth/finhealth/pkg/constants"
)

// Company is a tenant. Every financial record and computed summary is
// scoped to exactly one company through its ID.
type Company struct {
	ID                   string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name                 string         `json:"name" gorm:"not null"`
	Industry             string         `json:"industry"`
	Currency             string         `json:"currency" gorm:"size:3;default:INR"`
	FiscalYearStartMonth int            `json:"fiscal_year_start_month" gorm:"default:4"`
	GSTIN                string         `json:"gstin,omitempty"`
	PAN                  string         `json:"pan,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the primary key and fills monetary defaults.
func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Currency == "" {
		c.Currency = constants.DefaultCurrency
	}
	if c.FiscalYearStartMonth == 0 {
		c.FiscalYearStartMonth = constants.DefaultFiscalYearStartMonth
	}
	return nil
}

// Integration is a connection to an external accounting or banking
// source. Credentials are stored AES-GCM encrypted, never in the clear.
type Integration struct {
	ID                   string                    `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID            string                    `json:"company_id" gorm:"type:uuid;not null;index"`
	Type                 constants.IntegrationType `json:"type" gorm:"not null"`
	DisplayName          string                    `json:"display_name"`
	EncryptedCredentials string                    `json:"-" gorm:"not null"`
	Enabled              bool                      `json:"enabled" gorm:"default:true"`
	LastSyncedAt         *time.Time                `json:"last_synced_at,omitempty"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (i *Integration) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
