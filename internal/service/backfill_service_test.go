package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
)

func newBackfillFixture() (*BackfillService, *memStore) {
	store := newMemStore()
	svc := NewBackfillService(BackfillDependencies{
		Store: store,
		Now:   func() time.Time { return testClock },
	})
	return svc, store
}

func seedCompletedLog(store *memStore, id, assetID string, start, end time.Time) {
	store.logs[id] = domain.UsageLog{
		ID: id, AssetID: assetID,
		Status:    domain.UsageLogStatusCompleted,
		StartTime: start,
		EndTime:   &end,
	}
}

func TestBackfillPrefersCategoryRateOverAssetRate(t *testing.T) {
	svc, store := newBackfillFixture()
	store.assets["a1"] = domain.Asset{
		ID: "a1", Type: domain.AssetTypeEquipment,
		Status:          domain.AssetStatusAvailable,
		Category:        strPtr("A"),
		HourlyRateCents: 999,
	}
	store.rates["A"] = domain.CategoryRate{Category: "A", HourlyRateCents: 200}
	seedCompletedLog(store, "l1", "a1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 1, 0, 1, 0, time.UTC))

	result, err := svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Updated)

	log := store.logs["l1"]
	require.True(t, log.Snapshotted())
	assert.Equal(t, int64(200), *log.HourlyRateCentsSnapshot)
	assert.Equal(t, int64(2), *log.BillableHoursSnapshot)
	assert.Equal(t, int64(400), *log.CostCentsSnapshot)
	assert.Equal(t, domain.SnapshotSourceBackfill, *log.SnapshotSource)
	assert.Equal(t, testClock, *log.SnapshotAt)
}

func TestBackfillFallsBackToAssetRate(t *testing.T) {
	svc, store := newBackfillFixture()
	store.assets["a1"] = domain.Asset{
		ID: "a1", Type: domain.AssetTypeEquipment,
		Status:          domain.AssetStatusAvailable,
		HourlyRateCents: 150,
	}
	seedCompletedLog(store, "l1", "a1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC))

	result, err := svc.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	log := store.logs["l1"]
	assert.Equal(t, int64(150), *log.HourlyRateCentsSnapshot)
	assert.Equal(t, int64(3), *log.BillableHoursSnapshot)
	assert.Equal(t, int64(450), *log.CostCentsSnapshot)
}

func TestBackfillOrphanLogPricesAtZero(t *testing.T) {
	svc, store := newBackfillFixture()
	seedCompletedLog(store, "l1", "gone",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 1, 30, 0, 0, time.UTC))

	result, err := svc.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	log := store.logs["l1"]
	assert.Equal(t, int64(0), *log.HourlyRateCentsSnapshot)
	assert.Equal(t, int64(2), *log.BillableHoursSnapshot)
	assert.Equal(t, int64(0), *log.CostCentsSnapshot)
}

func TestBackfillSecondRunUpdatesNothing(t *testing.T) {
	svc, store := newBackfillFixture()
	store.assets["a1"] = domain.Asset{ID: "a1", Status: domain.AssetStatusAvailable, HourlyRateCents: 100}
	seedCompletedLog(store, "l1", "a1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))

	first, err := svc.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	second, err := svc.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Scanned)
	assert.Equal(t, 0, second.Updated)
}

func TestBackfillHonorsLimitOldestFirst(t *testing.T) {
	svc, store := newBackfillFixture()
	store.assets["a1"] = domain.Asset{ID: "a1", Status: domain.AssetStatusAvailable, HourlyRateCents: 100}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedCompletedLog(store, "newest", "a1", base.Add(48*time.Hour), base.Add(49*time.Hour))
	seedCompletedLog(store, "oldest", "a1", base, base.Add(time.Hour))
	seedCompletedLog(store, "middle", "a1", base.Add(24*time.Hour), base.Add(25*time.Hour))

	result, err := svc.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Updated)

	oldest, middle, newest := store.logs["oldest"], store.logs["middle"], store.logs["newest"]
	assert.True(t, oldest.Snapshotted())
	assert.True(t, middle.Snapshotted())
	assert.False(t, newest.Snapshotted())
}

func TestBackfillZeroDurationRowStillFreezes(t *testing.T) {
	svc, store := newBackfillFixture()
	store.assets["a1"] = domain.Asset{ID: "a1", Status: domain.AssetStatusAvailable, HourlyRateCents: 100}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedCompletedLog(store, "l1", "a1", at, at)

	result, err := svc.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	log := store.logs["l1"]
	assert.Equal(t, int64(0), *log.BillableHoursSnapshot)
	assert.Equal(t, int64(0), *log.CostCentsSnapshot)
}
