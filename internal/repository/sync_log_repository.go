package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Record stores a successful sync for the given entity, refreshing the
// entity's total row count alongside the watermark.
func (r *SyncLogRepository) Record(ctx context.Context, entity string, count int64) error {
	table, ok := models.EntityTable(entity)
	if !ok {
		return fmt.Errorf("unknown entity: %s", entity)
	}

	var total int64
	if err := r.db.WithContext(ctx).Table(table).Count(&total).Error; err != nil {
		return fmt.Errorf("failed to count %s rows: %w", table, err)
	}

	entry := models.SyncLogEntry{
		Entity:        entity,
		LastSyncedAt:  time.Now().UTC(),
		LastSyncCount: count,
		TotalRecords:  total,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to record sync log: %w", result.Error)
	}
	return nil
}

// LastSyncTime returns when the entity last synced successfully, or nil if
// it never has.
func (r *SyncLogRepository) LastSyncTime(ctx context.Context, entity string) (*time.Time, error) {
	var entry models.SyncLogEntry
	result := r.db.WithContext(ctx).First(&entry, "entity = ?", entity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sync log entry: %w", result.Error)
	}
	return &entry.LastSyncedAt, nil
}

// List returns the watermark rows for all entities, ordered by entity name.
func (r *SyncLogRepository) List(ctx context.Context) ([]models.SyncLogEntry, error) {
	var entries []models.SyncLogEntry
	result := r.db.WithContext(ctx).Order("entity ASC").Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sync log: %w", result.Error)
	}
	return entries, nil
}
