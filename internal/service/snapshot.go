package service

import "context"

// RowCounter reads current persisted row counts per entity.
type RowCounter interface {
	CountRows(ctx context.Context, entity string) (int64, error)
}

// SnapshotCounts reads the current row count for each entity. Counts are
// independent reads, not a point-in-time multi-table snapshot: each entity's
// before/after pair brackets that entity's own step only.
func SnapshotCounts(ctx context.Context, counter RowCounter, entities []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(entities))
	for _, entity := range entities {
		n, err := counter.CountRows(ctx, entity)
		if err != nil {
			return nil, err
		}
		counts[entity] = n
	}
	return counts, nil
}

// ComputeDeltas returns after−before per entity in after. Entities missing
// from before count as 0, so a first sync reports every row as new.
func ComputeDeltas(before, after map[string]int64) map[string]int64 {
	deltas := make(map[string]int64, len(after))
	for entity, n := range after {
		deltas[entity] = n - before[entity]
	}
	return deltas
}
