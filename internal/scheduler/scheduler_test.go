package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"github.com/fintrackhq/fintrack-sync/internal/service"
)

type mockStarter struct {
	mu       sync.Mutex
	starts   [][]string
	startErr error
	fired    chan struct{}
}

func newMockStarter() *mockStarter {
	return &mockStarter{fired: make(chan struct{}, 16)}
}

func (m *mockStarter) Start(ctx context.Context, entities []string, fullRefresh bool) (uint, error) {
	m.mu.Lock()
	m.starts = append(m.starts, append([]string(nil), entities...))
	err := m.startErr
	m.mu.Unlock()
	select {
	case m.fired <- struct{}{}:
	default:
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (m *mockStarter) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.starts)
}

func waitForFire(t *testing.T, starter *mockStarter) {
	t.Helper()
	select {
	case <-starter.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not fire in time")
	}
}

func TestScheduler_FiresFullRegistrySync(t *testing.T) {
	starter := newMockStarter()
	s := New(context.Background(), starter, zap.NewNop())
	defer s.Stop()

	s.scheduleEvery(10 * time.Millisecond)
	waitForFire(t, starter)

	starter.mu.Lock()
	entities := starter.starts[0]
	starter.mu.Unlock()

	if len(entities) != len(models.EntityRunOrder) {
		t.Fatalf("expected all entities, got %v", entities)
	}
	for i, e := range models.EntityRunOrder {
		if entities[i] != e {
			t.Errorf("entity %d: expected %s, got %s", i, e, entities[i])
		}
	}
}

func TestScheduler_SkipsWhenRunInProgress(t *testing.T) {
	starter := newMockStarter()
	starter.startErr = service.ErrSyncInProgress
	s := New(context.Background(), starter, zap.NewNop())
	defer s.Stop()

	s.scheduleEvery(10 * time.Millisecond)

	// Busy ticks are skipped silently and the schedule keeps going.
	waitForFire(t, starter)
	waitForFire(t, starter)
}

func TestScheduler_RescheduleReplacesSchedule(t *testing.T) {
	starter := newMockStarter()
	s := New(context.Background(), starter, zap.NewNop())
	defer s.Stop()

	s.scheduleEvery(10 * time.Millisecond)
	waitForFire(t, starter)

	// Replace with a schedule that will not fire within the test.
	s.scheduleEvery(time.Hour)

	drained := starter.startCount()
	time.Sleep(50 * time.Millisecond)
	if got := starter.startCount(); got > drained {
		t.Errorf("old schedule still firing after reschedule: %d -> %d", drained, got)
	}
}

func TestScheduler_ZeroIntervalDisables(t *testing.T) {
	starter := newMockStarter()
	s := New(context.Background(), starter, zap.NewNop())
	defer s.Stop()

	s.scheduleEvery(10 * time.Millisecond)
	waitForFire(t, starter)

	s.Reschedule(0)

	drained := starter.startCount()
	time.Sleep(50 * time.Millisecond)
	if got := starter.startCount(); got > drained {
		t.Errorf("schedule still firing after disable: %d -> %d", drained, got)
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	starter := newMockStarter()
	s := New(context.Background(), starter, zap.NewNop())

	s.scheduleEvery(10 * time.Millisecond)
	waitForFire(t, starter)

	s.Stop()
	s.Stop()
}
