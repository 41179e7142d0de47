package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEvent records one mutating action against company data: who did
// what to which resource, with before and after snapshots. Events are
// persisted locally and, when Kafka is enabled, mirrored to the audit
// topic for downstream archival.
type AuditEvent struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:uuid;index"`
	CompanyID  string    `json:"company_id" gorm:"type:uuid;index"`
	Action     string    `json:"action" gorm:"not null"`
	Resource   string    `json:"resource" gorm:"not null"`
	ResourceID string    `json:"resource_id,omitempty"`
	OldValues  JSON      `json:"old_values,omitempty" gorm:"type:jsonb"`
	NewValues  JSON      `json:"new_values,omitempty" gorm:"type:jsonb"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate assigns the primary key.
func (e *AuditEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
