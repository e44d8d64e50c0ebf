package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack-sync/internal/models"
)

func TestSyncLogRepository_RecordAndLastSyncTime(t *testing.T) {
	db := setupDB(t)
	repo := NewSyncLogRepository(db)
	accounts := NewAccountRepository(db)
	ctx := context.Background()

	// Never synced
	last, err := repo.LastSyncTime(ctx, "accounts")
	require.NoError(t, err)
	assert.Nil(t, last)

	// Seed two account rows so the total differs from the sync count
	_, err = accounts.Upsert(ctx, []models.Account{
		{ID: "a1", Name: "One", CurrentBalance: decimal.NewFromInt(1)},
		{ID: "a2", Name: "Two", CurrentBalance: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Record(ctx, "accounts", 1))

	last, err = repo.LastSyncTime(ctx, "accounts")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, time.Now().UTC(), *last, 5*time.Second)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "accounts", entries[0].Entity)
	assert.EqualValues(t, 1, entries[0].LastSyncCount)
	assert.EqualValues(t, 2, entries[0].TotalRecords)
}

func TestSyncLogRepository_RecordOverwritesWatermark(t *testing.T) {
	repo := NewSyncLogRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "categories", 10))
	first, err := repo.LastSyncTime(ctx, "categories")
	require.NoError(t, err)
	require.NotNil(t, first)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Record(ctx, "categories", 12))

	second, err := repo.LastSyncTime(ctx, "categories")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.True(t, second.After(*first), "watermark must move forward on re-record")

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 12, entries[0].LastSyncCount)
}

func TestSyncLogRepository_RecordRejectsUnknownEntity(t *testing.T) {
	repo := NewSyncLogRepository(setupDB(t))

	err := repo.Record(context.Background(), "payees", 1)
	assert.Error(t, err)
}

func TestSyncLogRepository_ListOrdersByEntity(t *testing.T) {
	repo := NewSyncLogRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "transactions", 5))
	require.NoError(t, repo.Record(ctx, "accounts", 3))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "accounts", entries[0].Entity)
	assert.Equal(t, "transactions", entries[1].Entity)
}
