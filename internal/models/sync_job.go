package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

type EntityStatus string

const (
	EntityStatusSuccess EntityStatus = "success"
	EntityStatusFailed  EntityStatus = "failed"
)

// EntityResult is the per-entity outcome within one sync job.
// Count is the number of records written by the entity's step, New the
// signed row-count delta observed across it. Use SucceededEntity and
// FailedEntity so a success never carries an error message.
type EntityResult struct {
	Count  int64        `json:"count"`
	New    int64        `json:"new"`
	Status EntityStatus `json:"status"`
	Error  *string      `json:"error"`
}

func SucceededEntity(count, delta int64) EntityResult {
	return EntityResult{Count: count, New: delta, Status: EntityStatusSuccess}
}

func FailedEntity(count, delta int64, message string) EntityResult {
	return EntityResult{Count: count, New: delta, Status: EntityStatusFailed, Error: &message}
}

// StringList is a JSONB-backed list column
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// ResultMap is a JSONB-backed entity→EntityResult column
type ResultMap map[string]EntityResult

// Value implements driver.Valuer for ResultMap
func (m ResultMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for ResultMap
func (m *ResultMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

// SyncJob represents one orchestration run over a chosen set of entities.
// At most one job has status=running at any time; the trigger enforces this,
// not the storage layer.
type SyncJob struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	StartedAt   time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at"`
	Status      SyncStatus `gorm:"column:status" json:"status"`
	Entities    StringList `gorm:"column:entities;type:jsonb" json:"entities"`
	FullRefresh bool       `gorm:"column:full_refresh" json:"full_refresh"`
	Results     ResultMap  `gorm:"column:results;type:jsonb" json:"results"`
	Error       *string    `gorm:"column:error" json:"error"`
}

// TableName specifies the table name for GORM
func (SyncJob) TableName() string {
	return "sync_jobs"
}

// Terminal reports whether the job has reached a final status.
func (j *SyncJob) Terminal() bool {
	return j.Status != SyncStatusRunning
}
