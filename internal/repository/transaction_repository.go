package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert writes transactions with replace-by-primary-key semantics, so the
// 3-day overlap window re-applies edited transactions safely.
func (r *TransactionRepository) Upsert(ctx context.Context, transactions []models.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range transactions {
		transactions[i].SyncedAt = now
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&transactions)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert transactions: %w", result.Error)
	}
	return int64(len(transactions)), nil
}
