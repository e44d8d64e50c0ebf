package repository

import (
	"context"
	"fmt"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Upsert writes categories with replace-by-primary-key semantics.
func (r *CategoryRepository) Upsert(ctx context.Context, categories []models.Category) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&categories)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert categories: %w", result.Error)
	}
	return int64(len(categories)), nil
}
