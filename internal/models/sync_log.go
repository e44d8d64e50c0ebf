package models

import "time"

// SyncLogEntry is the per-entity watermark used to compute incremental
// fetch windows on the next run.
type SyncLogEntry struct {
	Entity        string    `gorm:"column:entity;primaryKey" json:"entity"`
	LastSyncedAt  time.Time `gorm:"column:last_synced_at" json:"last_synced_at"`
	LastSyncCount int64     `gorm:"column:last_sync_count" json:"last_sync_count"`
	TotalRecords  int64     `gorm:"column:total_records" json:"total_records"`
}

// TableName specifies the table name for GORM
func (SyncLogEntry) TableName() string {
	return "sync_log"
}
