package models

import (
	"time"
)

// KVEntry is a single persisted key of the dashboard's local cache
// (importLogs, currentStats, currentStatsTimestamp)
type KVEntry struct {
	Key       string    `gorm:"primaryKey;column:key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (KVEntry) TableName() string {
	return "kv_entries"
}
