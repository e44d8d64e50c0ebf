package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert writes accounts with replace-by-primary-key semantics and returns
// the number of rows written. Applying the same batch twice is a no-op.
func (r *AccountRepository) Upsert(ctx context.Context, accounts []models.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range accounts {
		accounts[i].SyncedAt = now
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&accounts)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert accounts: %w", result.Error)
	}
	return int64(len(accounts)), nil
}

// IDs returns all stored account ids.
func (r *AccountRepository) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Order("id ASC").
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", result.Error)
	}
	return ids, nil
}
