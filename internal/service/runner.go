package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fintrackhq/fintrack-sync/internal/models"
)

// Trigger-boundary errors. ErrSyncInProgress is a conflict; the others are
// plain input-validation failures.
var (
	ErrSyncInProgress = errors.New("a sync is already in progress")
	ErrNoEntities     = errors.New("at least one entity must be selected")
	ErrUnknownEntity  = errors.New("unknown entities")
)

// historyConcurrency bounds the per-account history fan-out.
const historyConcurrency = 4

// FinanceAPI is the remote fetch capability. Implementations must paginate
// internally and return complete result sets for the requested window.
type FinanceAPI interface {
	Validate(ctx context.Context) error
	FetchAccounts(ctx context.Context) ([]models.Account, error)
	FetchAccountHistory(ctx context.Context, accountID string, after *time.Time) ([]models.BalancePoint, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchTransactions(ctx context.Context, start, end *time.Time) ([]models.Transaction, error)
	FetchBudgets(ctx context.Context, startMonth, endMonth time.Time) ([]models.Budget, error)
}

// JobStore persists sync jobs and defines the single-active-job gate.
type JobStore interface {
	Create(ctx context.Context, entities []string, fullRefresh bool) (uint, error)
	UpdateProgress(ctx context.Context, jobID uint, results models.ResultMap) error
	Finish(ctx context.Context, jobID uint, status models.SyncStatus, results models.ResultMap, errMsg *string) error
	GetRunning(ctx context.Context) (*models.SyncJob, error)
}

// AccountStore persists accounts.
type AccountStore interface {
	Upsert(ctx context.Context, accounts []models.Account) (int64, error)
	IDs(ctx context.Context) ([]string, error)
}

// AccountHistoryStore persists per-account balance history.
type AccountHistoryStore interface {
	Upsert(ctx context.Context, accountID string, points []models.BalancePoint) (int64, error)
	LatestDate(ctx context.Context, accountID string) (*time.Time, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	Upsert(ctx context.Context, categories []models.Category) (int64, error)
}

// TransactionStore persists transactions.
type TransactionStore interface {
	Upsert(ctx context.Context, transactions []models.Transaction) (int64, error)
}

// BudgetStore persists budget rows.
type BudgetStore interface {
	Upsert(ctx context.Context, budgets []models.Budget) (int64, error)
}

// SyncLogStore persists per-entity watermarks.
type SyncLogStore interface {
	Record(ctx context.Context, entity string, count int64) error
	LastSyncTime(ctx context.Context, entity string) (*time.Time, error)
}

// Runner orchestrates sync jobs: one run fetches each requested entity in
// dependency order, persisting live progress and per-entity outcomes.
type Runner struct {
	api          FinanceAPI
	jobs         JobStore
	accounts     AccountStore
	history      AccountHistoryStore
	categories   CategoryStore
	transactions TransactionStore
	budgets      BudgetStore
	syncLog      SyncLogStore
	stats        RowCounter
	logger       *zap.Logger

	// baseCtx is the parent for background runs; cancelling it (on
	// shutdown) stops a run between entity steps while still landing a
	// terminal job record.
	baseCtx context.Context
}

func NewRunner(
	baseCtx context.Context,
	api FinanceAPI,
	jobs JobStore,
	accounts AccountStore,
	history AccountHistoryStore,
	categories CategoryStore,
	transactions TransactionStore,
	budgets BudgetStore,
	syncLog SyncLogStore,
	stats RowCounter,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		api:          api,
		jobs:         jobs,
		accounts:     accounts,
		history:      history,
		categories:   categories,
		transactions: transactions,
		budgets:      budgets,
		syncLog:      syncLog,
		stats:        stats,
		logger:       logger,
		baseCtx:      baseCtx,
	}
}

// Start validates the trigger, gates on the running job, creates the job
// record, and launches the run in the background. Returns the new job id.
func (r *Runner) Start(ctx context.Context, entities []string, fullRefresh bool) (uint, error) {
	if len(entities) == 0 {
		return 0, ErrNoEntities
	}
	if unknown := models.UnknownEntities(entities); len(unknown) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEntity, strings.Join(unknown, ", "))
	}

	// Check-then-act: fine for a single-process deployment, documented as
	// not a distributed lock.
	running, err := r.jobs.GetRunning(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check running job: %w", err)
	}
	if running != nil {
		return 0, ErrSyncInProgress
	}

	ordered := models.OrderEntities(entities)
	jobID, err := r.jobs.Create(ctx, ordered, fullRefresh)
	if err != nil {
		return 0, fmt.Errorf("failed to create sync job: %w", err)
	}

	go r.Run(r.baseCtx, jobID, ordered, fullRefresh)

	return jobID, nil
}

// Run executes one sync job to completion. Entity-level failures are
// captured per entity and do not abort the run; anything that fails before
// or between entity steps is fatal and marks the job failed. Exactly one
// terminal write happens per job, on a detached context so it survives
// shutdown cancellation.
func (r *Runner) Run(ctx context.Context, jobID uint, entities []string, fullRefresh bool) {
	ordered := models.OrderEntities(entities)
	results := models.ResultMap{}
	anyFailed := false
	var topErr error

	log := r.logger.With(zap.Uint("job_id", jobID))
	log.Info("sync run starting",
		zap.Strings("entities", ordered),
		zap.Bool("full_refresh", fullRefresh))

	if err := r.api.Validate(ctx); err != nil {
		topErr = err
		log.Error("authentication failed, aborting run", zap.Error(err))
	} else {
		// Accounts fetched this run, threaded to the history step so it
		// does not re-read ids from storage.
		var runAccounts []models.Account
		haveAccounts := false

	loop:
		for i, entity := range ordered {
			if err := ctx.Err(); err != nil {
				topErr = err
				break loop
			}

			before, err := SnapshotCounts(ctx, r.stats, []string{entity})
			if err != nil {
				topErr = err
				break loop
			}

			count, entityErr := r.syncEntity(ctx, entity, fullRefresh, &runAccounts, &haveAccounts)

			after, err := SnapshotCounts(ctx, r.stats, []string{entity})
			if err != nil {
				topErr = err
				break loop
			}
			delta := ComputeDeltas(before, after)[entity]

			if entityErr != nil {
				anyFailed = true
				results[entity] = models.FailedEntity(count, delta, entityErr.Error())
				log.Warn("entity sync failed",
					zap.String("entity", entity),
					zap.Error(entityErr))
			} else {
				results[entity] = models.SucceededEntity(count, delta)
				log.Info("entity synced",
					zap.String("entity", entity),
					zap.Int64("count", count),
					zap.Int64("new", delta))
			}

			// Persist incremental progress so pollers see it live; the
			// last entity's result rides on the terminal write instead.
			if i < len(ordered)-1 {
				if err := r.jobs.UpdateProgress(ctx, jobID, results); err != nil {
					topErr = err
					break loop
				}
			}
		}
	}

	status := overallStatus(topErr, anyFailed)
	var errMsg *string
	if topErr != nil {
		msg := topErr.Error()
		errMsg = &msg
	}

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.jobs.Finish(finishCtx, jobID, status, results, errMsg); err != nil {
		log.Error("failed to write terminal job state", zap.Error(err))
		return
	}

	log.Info("sync run finished", zap.String("status", string(status)))
}

func overallStatus(topErr error, anyFailed bool) models.SyncStatus {
	switch {
	case topErr != nil:
		return models.SyncStatusFailed
	case anyFailed:
		return models.SyncStatusPartial
	default:
		return models.SyncStatusSuccess
	}
}

// syncEntity performs one entity's fetch+upsert step and returns the number
// of records written. The returned count is meaningful even alongside an
// error (a partially failed history step reports what it did write).
func (r *Runner) syncEntity(ctx context.Context, entity string, fullRefresh bool, runAccounts *[]models.Account, haveAccounts *bool) (int64, error) {
	switch entity {
	case models.EntityAccounts:
		data, err := r.api.FetchAccounts(ctx)
		if err != nil {
			return 0, err
		}
		count, err := r.accounts.Upsert(ctx, data)
		if err != nil {
			return 0, err
		}
		if err := r.syncLog.Record(ctx, entity, count); err != nil {
			return count, err
		}
		*runAccounts = data
		*haveAccounts = true
		return count, nil

	case models.EntityAccountHistory:
		return r.syncAccountHistory(ctx, fullRefresh, *runAccounts, *haveAccounts)

	case models.EntityCategories:
		data, err := r.api.FetchCategories(ctx)
		if err != nil {
			return 0, err
		}
		count, err := r.categories.Upsert(ctx, data)
		if err != nil {
			return 0, err
		}
		if err := r.syncLog.Record(ctx, entity, count); err != nil {
			return count, err
		}
		return count, nil

	case models.EntityTransactions:
		var start *time.Time
		if !fullRefresh {
			lastSync, err := r.syncLog.LastSyncTime(ctx, models.EntityTransactions)
			if err != nil {
				return 0, err
			}
			start = TransactionsWindowStart(lastSync, fullRefresh)
		}
		data, err := r.api.FetchTransactions(ctx, start, nil)
		if err != nil {
			return 0, err
		}
		count, err := r.transactions.Upsert(ctx, data)
		if err != nil {
			return 0, err
		}
		if err := r.syncLog.Record(ctx, entity, count); err != nil {
			return count, err
		}
		return count, nil

	case models.EntityBudgets:
		start, end := BudgetWindow(time.Now().UTC())
		data, err := r.api.FetchBudgets(ctx, start, end)
		if err != nil {
			return 0, err
		}
		count, err := r.budgets.Upsert(ctx, data)
		if err != nil {
			return 0, err
		}
		if err := r.syncLog.Record(ctx, entity, count); err != nil {
			return count, err
		}
		return count, nil

	default:
		return 0, fmt.Errorf("unknown entity: %s", entity)
	}
}

// syncAccountHistory fetches balance history per account with a bounded
// fan-out. One account's failure never aborts the others; collected
// failures mark the whole entity failed while successful accounts' rows
// stay persisted.
func (r *Runner) syncAccountHistory(ctx context.Context, fullRefresh bool, runAccounts []models.Account, haveAccounts bool) (int64, error) {
	var accountIDs []string
	if haveAccounts {
		for _, a := range runAccounts {
			accountIDs = append(accountIDs, a.ID)
		}
	} else {
		// Accounts weren't synced this run — read ids from storage.
		ids, err := r.accounts.IDs(ctx)
		if err != nil {
			return 0, err
		}
		accountIDs = ids
	}

	var (
		mu       sync.Mutex
		total    int64
		failures []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)

	for _, accountID := range accountIDs {
		accountID := accountID
		g.Go(func() error {
			var after *time.Time
			if !fullRefresh {
				latest, err := r.history.LatestDate(gctx, accountID)
				if err != nil {
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", accountID, err))
					mu.Unlock()
					return nil
				}
				after = latest
			}

			points, err := r.api.FetchAccountHistory(gctx, accountID, after)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", accountID, err))
				mu.Unlock()
				return nil
			}
			if len(points) == 0 {
				return nil
			}

			n, err := r.history.Upsert(gctx, accountID, points)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", accountID, err))
				mu.Unlock()
				return nil
			}

			mu.Lock()
			total += n
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only observes ctx cancellation.
	if err := g.Wait(); err != nil {
		return total, err
	}

	if len(failures) > 0 {
		return total, fmt.Errorf("history sync failed for %d of %d accounts: %s",
			len(failures), len(accountIDs), strings.Join(failures, "; "))
	}

	if err := r.syncLog.Record(ctx, models.EntityAccountHistory, total); err != nil {
		return total, err
	}
	return total, nil
}
