package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduledImport represents a recurring import trigger
type ScheduledImport struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"unique;not null" json:"name"`
	APIName   string     `gorm:"not null;column:api_name" json:"api_name"`
	APIURL    string     `gorm:"not null;column:api_url" json:"api_url"`
	Format    string     `gorm:"not null;default:json" json:"format"` // json, xml
	Cron      string     `gorm:"not null" json:"cron"`                // 6-field cron expression
	Timezone  string     `gorm:"default:UTC" json:"timezone"`
	Enabled   bool       `gorm:"default:true" json:"enabled"`
	LastRunAt *time.Time `gorm:"column:last_run_at" json:"last_run_at"`
	NextRunAt *time.Time `gorm:"column:next_run_at" json:"next_run_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating record
func (si *ScheduledImport) BeforeCreate(tx *gorm.DB) error {
	if si.ID == "" {
		si.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (ScheduledImport) TableName() string {
	return "scheduled_imports"
}
