package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"github.com/fintrackhq/fintrack-sync/internal/service"
)

// SyncStarter triggers a sync run. Implemented by service.Runner.
type SyncStarter interface {
	Start(ctx context.Context, entities []string, fullRefresh bool) (uint, error)
}

// Scheduler fires a full incremental sync on a fixed interval. The interval
// is settable at runtime; an interval of zero disables scheduling.
type Scheduler struct {
	starter SyncStarter
	logger  *zap.Logger
	baseCtx context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(baseCtx context.Context, starter SyncStarter, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		starter: starter,
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Reschedule replaces the current schedule with one firing every given number
// of hours. Zero or negative disables scheduling. Safe to call at any time;
// the running ticker (if any) is torn down first, so at most one schedule is
// active.
func (s *Scheduler) Reschedule(hours int) {
	s.scheduleEvery(time.Duration(hours) * time.Hour)
}

func (s *Scheduler) scheduleEvery(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.wg.Wait()
	}

	if interval <= 0 {
		s.logger.Info("scheduled sync disabled")
		return
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx, interval)

	s.logger.Info("scheduled sync enabled", zap.Duration("interval", interval))
}

// Stop tears down the active schedule, if any, and waits for the ticker
// goroutine to exit. In-flight sync runs are not interrupted here; they hang
// off the runner's base context.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.wg.Wait()
	}
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

// fire starts a full-registry incremental sync. A run already in progress is
// not an error at this level; the tick is simply skipped.
func (s *Scheduler) fire(ctx context.Context) {
	entities := append([]string(nil), models.EntityRunOrder...)

	jobID, err := s.starter.Start(ctx, entities, false)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		s.logger.Debug("scheduled sync skipped, run already in progress")
	case err != nil:
		s.logger.Warn("scheduled sync failed to start", zap.Error(err))
	default:
		s.logger.Info("scheduled sync started", zap.Uint("job_id", jobID))
	}
}
