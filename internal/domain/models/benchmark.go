package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finhealth/finhealth/pkg/constants"
)

// IndustryBenchmark is one seedable benchmark row: the quartile spread
// of a metric within an industry peer group. industry+metric is unique;
// rows override the built-in defaults.
type IndustryBenchmark struct {
	ID             string             `json:"id" gorm:"type:uuid;primaryKey"`
	Industry       constants.Industry `json:"industry" gorm:"not null;uniqueIndex:idx_benchmark_industry_metric"`
	Metric         string             `json:"metric" gorm:"not null;uniqueIndex:idx_benchmark_industry_metric"`
	IndustryAvg    float64            `json:"industry_avg"`
	TopQuartile    float64            `json:"top_quartile"`
	BottomQuartile float64            `json:"bottom_quartile"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// BeforeCreate assigns the primary key.
func (b *IndustryBenchmark) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
