package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("sync job not found")

type SyncJobRepository struct {
	db *gorm.DB
}

func NewSyncJobRepository(db *gorm.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

// Create inserts a new job in running state and returns its id.
// The entity list is stored verbatim; callers pass it already ordered.
func (r *SyncJobRepository) Create(ctx context.Context, entities []string, fullRefresh bool) (uint, error) {
	job := models.SyncJob{
		StartedAt:   time.Now().UTC(),
		Status:      models.SyncStatusRunning,
		Entities:    models.StringList(entities),
		FullRefresh: fullRefresh,
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return 0, fmt.Errorf("failed to create sync job: %w", err)
	}
	return job.ID, nil
}

// UpdateProgress replaces the job's results wholesale while it is still
// running, so pollers can observe live per-entity progress.
func (r *SyncJobRepository) UpdateProgress(ctx context.Context, jobID uint, results models.ResultMap) error {
	result := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ?", jobID).
		Update("results", results)
	if result.Error != nil {
		return fmt.Errorf("failed to update job progress: %w", result.Error)
	}
	return nil
}

// Finish writes the terminal state: status, finished_at, the full results
// mapping, and the top-level error if any. Called exactly once per job.
func (r *SyncJobRepository) Finish(ctx context.Context, jobID uint, status models.SyncStatus, results models.ResultMap, errMsg *string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": &now,
			"results":     results,
			"error":       errMsg,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finish sync job: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a job by id. Unknown ids return ErrJobNotFound.
func (r *SyncJobRepository) GetByID(ctx context.Context, jobID uint) (*models.SyncJob, error) {
	var job models.SyncJob
	result := r.db.WithContext(ctx).First(&job, "id = ?", jobID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get sync job: %w", result.Error)
	}
	return &job, nil
}

// GetRunning returns the most recently started running job, or nil when no
// sync is in progress. This is the single-active-job gate.
func (r *SyncJobRepository) GetRunning(ctx context.Context) (*models.SyncJob, error) {
	var job models.SyncJob
	result := r.db.WithContext(ctx).
		Where("status = ?", models.SyncStatusRunning).
		Order("started_at DESC").
		First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get running job: %w", result.Error)
	}
	return &job, nil
}

// ListRecent returns the newest jobs first, bounded by limit.
func (r *SyncJobRepository) ListRecent(ctx context.Context, limit int) ([]models.SyncJob, error) {
	var jobs []models.SyncJob
	result := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&jobs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", result.Error)
	}
	return jobs, nil
}
