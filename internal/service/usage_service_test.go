package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

func newUsageFixture() (*UsageService, *memStore, *capturePublisher) {
	store := newMemStore()
	publisher := &capturePublisher{}
	reconcile := NewReconcileService(ReconcileDependencies{
		Store:     store,
		Publisher: publisher,
		Now:       func() time.Time { return testClock },
	})
	svc := NewUsageService(UsageDependencies{
		Store:     store,
		Reconcile: reconcile,
		Now:       func() time.Time { return testClock },
	})
	return svc, store, publisher
}

func TestUsageCreateReconcilesAsset(t *testing.T) {
	svc, store, publisher := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusAvailable)

	log, err := svc.Create(context.Background(), CreateUsageLogInput{
		AssetID:   "a1",
		StartTime: testClock.Add(-time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UsageLogStatusInProgress, log.Status)

	assert.Equal(t, domain.AssetStatusInUse, store.assets["a1"].Status)
	require.Len(t, publisher.published, 1)
}

func TestUsageCreateMissingAsset(t *testing.T) {
	svc, store, _ := newUsageFixture()

	_, err := svc.Create(context.Background(), CreateUsageLogInput{AssetID: "ghost", StartTime: testClock})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.Empty(t, store.logs)
}

func TestUsageCompleteFreezesLiveSnapshot(t *testing.T) {
	svc, store, _ := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusInUse)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-90 * time.Minute),
	}

	log, err := svc.Complete(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, domain.UsageLogStatusCompleted, log.Status)
	require.NotNil(t, log.EndTime)
	assert.Equal(t, testClock, *log.EndTime)

	require.True(t, log.Snapshotted())
	assert.Equal(t, int64(500), *log.HourlyRateCentsSnapshot)
	assert.Equal(t, int64(2), *log.BillableHoursSnapshot)
	assert.Equal(t, int64(1000), *log.CostCentsSnapshot)
	assert.Equal(t, domain.SnapshotSourceLive, *log.SnapshotSource)

	// The asset is no longer occupied once its only log closes.
	assert.Equal(t, domain.AssetStatusAvailable, store.assets["a1"].Status)
}

func TestUsageCompleteKeepsExistingSnapshot(t *testing.T) {
	svc, store, _ := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusInUse)
	end := testClock.Add(-time.Hour)
	at := testClock.Add(-30 * time.Minute)
	source := domain.SnapshotSourceBackfill
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:                  domain.UsageLogStatusInProgress,
		StartTime:               testClock.Add(-2 * time.Hour),
		EndTime:                 &end,
		HourlyRateCentsSnapshot: int64Ptr(42),
		BillableHoursSnapshot:   int64Ptr(1),
		CostCentsSnapshot:       int64Ptr(42),
		SnapshotAt:              &at,
		SnapshotSource:          &source,
	}

	log, err := svc.Complete(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, int64(42), *log.CostCentsSnapshot)
	assert.Equal(t, domain.SnapshotSourceBackfill, *log.SnapshotSource)
	assert.Equal(t, end, *log.EndTime)
}

func TestUsageDeleteReconcilesAsset(t *testing.T) {
	svc, store, _ := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusInUse)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-time.Hour),
	}

	require.NoError(t, svc.Delete(context.Background(), "l1"))
	assert.Empty(t, store.logs)
	assert.Equal(t, domain.AssetStatusAvailable, store.assets["a1"].Status)
}

func TestUsageDeleteMissingIsIdempotent(t *testing.T) {
	svc, store, publisher := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusAvailable)

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Empty(t, publisher.published)
	assert.Zero(t, store.assetStatusWrites)
}

func TestUsageUpdateEndTimeClearsOccupancy(t *testing.T) {
	svc, store, _ := newUsageFixture()
	seedAsset(store, "a1", domain.AssetStatusInUse)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-time.Hour),
	}

	status := domain.UsageLogStatusCompleted
	end := testClock.Add(-time.Minute)
	log, err := svc.Update(context.Background(), "l1", UpdateUsageLogInput{
		Status:  &status,
		EndTime: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UsageLogStatusCompleted, log.Status)
	assert.Equal(t, domain.AssetStatusAvailable, store.assets["a1"].Status)
}
