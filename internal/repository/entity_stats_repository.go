package repository

import (
	"context"
	"fmt"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
)

// EntityStatsRepository answers row-count questions per entity table. Each
// count is an independent read; there is no point-in-time multi-table
// snapshot, which is fine because deltas are computed per entity around
// that entity's own step.
type EntityStatsRepository struct {
	db *gorm.DB
}

func NewEntityStatsRepository(db *gorm.DB) *EntityStatsRepository {
	return &EntityStatsRepository{db: db}
}

// CountRows returns the current row count for the entity's table.
func (r *EntityStatsRepository) CountRows(ctx context.Context, entity string) (int64, error) {
	table, ok := models.EntityTable(entity)
	if !ok {
		return 0, fmt.Errorf("unknown entity: %s", entity)
	}

	var count int64
	if err := r.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return count, nil
}
