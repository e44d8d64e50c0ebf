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

type AccountHistoryRepository struct {
	db *gorm.DB
}

func NewAccountHistoryRepository(db *gorm.DB) *AccountHistoryRepository {
	return &AccountHistoryRepository{db: db}
}

// Upsert writes daily balance points for one account and returns rows
// written. The account id is stamped onto every point.
func (r *AccountHistoryRepository) Upsert(ctx context.Context, accountID string, points []models.BalancePoint) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}
	for i := range points {
		points[i].AccountID = accountID
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&points)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert account history: %w", result.Error)
	}
	return int64(len(points)), nil
}

// LatestDate returns the most recent history date stored for the account,
// or nil when the account has no history yet.
func (r *AccountHistoryRepository) LatestDate(ctx context.Context, accountID string) (*time.Time, error) {
	var point models.BalancePoint
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date DESC").
		First(&point)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest history date: %w", result.Error)
	}
	return &point.Date, nil
}
