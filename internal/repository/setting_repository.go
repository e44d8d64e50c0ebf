package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the stored value for key, or fallback when absent.
func (r *SettingRepository) Get(ctx context.Context, key, fallback string) (string, error) {
	var setting models.Setting
	result := r.db.WithContext(ctx).First(&setting, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, result.Error)
	}
	return setting.Value, nil
}

// Set upserts a setting value.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&setting)
	if result.Error != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, result.Error)
	}
	return nil
}
