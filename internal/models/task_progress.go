package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskProgress records one import submission made from this desktop app
type TaskProgress struct {
	ID          string    `gorm:"primaryKey" json:"id"`                        // UUID submission key
	TaskType    string    `gorm:"not null;column:task_type" json:"task_type"`  // import
	TriggeredBy string    `gorm:"not null;default:manual" json:"triggered_by"` // manual, schedule
	APIName     string    `gorm:"column:api_name" json:"api_name"`
	APIURL      string    `gorm:"column:api_url" json:"api_url"`
	Format      string    `gorm:"column:format" json:"format"` // json, xml
	JobID       string    `gorm:"column:job_id" json:"job_id"` // backend job id or "Unknown"
	ImportLogID string    `gorm:"column:import_log_id" json:"import_log_id"`
	Status      string    `gorm:"not null;default:starting" json:"status"` // starting, submitted, failed
	Messages    string    `gorm:"type:text" json:"messages"`               // JSON array of strings
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating record
func (tp *TaskProgress) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == "" {
		tp.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (TaskProgress) TableName() string {
	return "task_progress"
}
