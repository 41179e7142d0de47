// Package models defines the domain models for the FinHealth service.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finhealth/finhealth/pkg/constants"
)

// User is a registered account. A user can belong to several companies
// and one of them is the default selected at login.
type User struct {
	ID               string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string         `json:"-" gorm:"not null"`
	FullName         string         `json:"full_name"`
	Phone            string         `json:"phone,omitempty"`
	DefaultCompanyID *string        `json:"default_company_id,omitempty" gorm:"type:uuid"`
	TwoFactorEnabled bool           `json:"two_factor_enabled"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the primary key.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserCompany links a user to a company with a role. The pair is unique.
type UserCompany struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_company"`
	CompanyID string         `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_company"`
	Role      constants.Role `json:"role" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (m *UserCompany) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// UserPreference stores per-user, per-company UI and notification
// settings. The pair is unique.
type UserPreference struct {
	ID                   string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID               string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_pref"`
	CompanyID            string    `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_pref"`
	DashboardLayout      string    `json:"dashboard_layout"`
	EmailNotifications   bool      `json:"email_notifications" gorm:"default:true"`
	MonthlyReportEmails  bool      `json:"monthly_report_emails" gorm:"default:true"`
	ScoreAlertThresholds JSON      `json:"score_alert_thresholds,omitempty" gorm:"type:jsonb"`
	Locale               string    `json:"locale" gorm:"default:en-IN"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (p *UserPreference) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
