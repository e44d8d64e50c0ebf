package service

import (
	"context"
	"errors"
	"testing"
)

type mockCounter struct {
	countRowsFunc func(ctx context.Context, entity string) (int64, error)
}

func (m *mockCounter) CountRows(ctx context.Context, entity string) (int64, error) {
	if m.countRowsFunc != nil {
		return m.countRowsFunc(ctx, entity)
	}
	return 0, nil
}

func TestSnapshotCounts(t *testing.T) {
	counts := map[string]int64{"accounts": 5, "budgets": 12}
	counter := &mockCounter{
		countRowsFunc: func(ctx context.Context, entity string) (int64, error) {
			return counts[entity], nil
		},
	}

	got, err := SnapshotCounts(context.Background(), counter, []string{"accounts", "budgets"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["accounts"] != 5 || got["budgets"] != 12 {
		t.Errorf("unexpected snapshot: %v", got)
	}
}

func TestSnapshotCounts_PropagatesError(t *testing.T) {
	counter := &mockCounter{
		countRowsFunc: func(ctx context.Context, entity string) (int64, error) {
			return 0, errors.New("table missing")
		},
	}

	_, err := SnapshotCounts(context.Background(), counter, []string{"accounts"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestComputeDeltas(t *testing.T) {
	before := map[string]int64{"accounts": 65, "transactions": 100}
	after := map[string]int64{"accounts": 67, "transactions": 97}

	deltas := ComputeDeltas(before, after)
	if deltas["accounts"] != 2 {
		t.Errorf("expected +2 for accounts, got %d", deltas["accounts"])
	}
	if deltas["transactions"] != -3 {
		t.Errorf("negative deltas are legal, got %d", deltas["transactions"])
	}
}

func TestComputeDeltas_MissingBeforeTreatedAsZero(t *testing.T) {
	deltas := ComputeDeltas(map[string]int64{}, map[string]int64{"budgets": 12})
	if deltas["budgets"] != 12 {
		t.Errorf("expected 12, got %d", deltas["budgets"])
	}
}

func TestComputeDeltas_Linearity(t *testing.T) {
	x := map[string]int64{"accounts": 7, "categories": 31}
	y := map[string]int64{"accounts": 12, "categories": 29}

	// delta(x, x) is zero for every key
	for entity, d := range ComputeDeltas(x, x) {
		if d != 0 {
			t.Errorf("delta(x,x) for %s: expected 0, got %d", entity, d)
		}
	}

	// delta(x, y) == -delta(y, x)
	fwd := ComputeDeltas(x, y)
	rev := ComputeDeltas(y, x)
	for entity := range fwd {
		if fwd[entity] != -rev[entity] {
			t.Errorf("antisymmetry broken for %s: %d vs %d", entity, fwd[entity], rev[entity])
		}
	}
}
