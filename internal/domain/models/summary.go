package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryKind names one of the per-company computed summary tables.
type SummaryKind string

const (
	SummaryHealth    SummaryKind = "health"
	SummaryCredit    SummaryKind = "credit"
	SummaryRisk      SummaryKind = "risk"
	SummaryForecast  SummaryKind = "forecast"
	SummaryBenchmark SummaryKind = "benchmark"
)

// ComputedSummary is the persisted result of one analytics engine for
// one company. One row per company per kind, replaced on recompute.
// The payload column holds the engine's full response document.
type ComputedSummary struct {
	ID         string      `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID  string      `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_computed_company_kind"`
	Kind       SummaryKind `json:"kind" gorm:"size:16;not null;uniqueIndex:idx_computed_company_kind"`
	Payload    JSON        `json:"payload" gorm:"type:jsonb"`
	ComputedAt time.Time   `json:"computed_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (s *ComputedSummary) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Report is a versioned analytics snapshot generated after each upload.
// Version increments per company.
type Report struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID string    `json:"company_id" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"not null"`
	Version   int       `json:"version" gorm:"not null"`
	Title     string    `json:"title"`
	Payload   JSON      `json:"payload" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the primary key.
func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
