package repository

import (
	"context"
	"fmt"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert writes budget rows keyed by (category, month). The trailing-window
// refetch replaces the same months every run.
func (r *BudgetRepository) Upsert(ctx context.Context, budgets []models.Budget) (int64, error) {
	if len(budgets) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&budgets)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert budgets: %w", result.Error)
	}
	return int64(len(budgets)), nil
}
