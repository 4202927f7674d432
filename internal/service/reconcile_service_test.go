package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
)

func newReconcileFixture() (*ReconcileService, *memStore, *capturePublisher) {
	store := newMemStore()
	publisher := &capturePublisher{}
	svc := NewReconcileService(ReconcileDependencies{
		Store:     store,
		Publisher: publisher,
		Now:       func() time.Time { return testClock },
	})
	return svc, store, publisher
}

func TestRecomputeMissingAssetIsNoOp(t *testing.T) {
	svc, store, publisher := newReconcileFixture()

	result, err := svc.RecomputeStatus(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Nil(t, result.Target)
	assert.Empty(t, publisher.published)
	assert.Zero(t, store.assetStatusWrites)
}

func TestRecomputeSkipsNonTrackedAssets(t *testing.T) {
	svc, store, publisher := newReconcileFixture()
	store.assets["f1"] = domain.Asset{ID: "f1", Type: domain.AssetTypeFacility, Status: domain.AssetStatusAvailable}
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "f1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-time.Hour),
	}

	result, err := svc.RecomputeStatus(context.Background(), "f1")
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Nil(t, result.Target)
	assert.Equal(t, domain.AssetStatusAvailable, store.assets["f1"].Status)
	assert.Empty(t, publisher.published)
}

func TestRecomputeMaintenanceShortCircuits(t *testing.T) {
	svc, store, publisher := newReconcileFixture()
	seedAsset(store, "a1", domain.AssetStatusMaintenance)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-time.Hour),
	}

	result, err := svc.RecomputeStatus(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, result.Updated)
	require.NotNil(t, result.Target)
	assert.Equal(t, domain.AssetStatusMaintenance, *result.Target)

	assert.Equal(t, domain.AssetStatusMaintenance, store.assets["a1"].Status)
	assert.Zero(t, store.assetStatusWrites)
	assert.Empty(t, publisher.published)
}

func TestRecomputeDerivesInUseFromOccupyingLog(t *testing.T) {
	svc, store, publisher := newReconcileFixture()
	seedAsset(store, "a1", domain.AssetStatusAvailable)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusInProgress,
		StartTime: testClock.Add(-time.Hour),
	}

	result, err := svc.RecomputeStatus(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, result.Updated)
	require.NotNil(t, result.Target)
	assert.Equal(t, domain.AssetStatusInUse, *result.Target)
	assert.Equal(t, domain.AssetStatusInUse, store.assets["a1"].Status)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "a1", publisher.published[0].AssetID)
}

func TestRecomputeDerivesAvailableWhenNothingOccupies(t *testing.T) {
	svc, store, _ := newReconcileFixture()
	seedAsset(store, "a1", domain.AssetStatusInUse)
	end := testClock.Add(-time.Minute)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusCompleted,
		StartTime: testClock.Add(-2 * time.Hour),
		EndTime:   &end,
	}

	result, err := svc.RecomputeStatus(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, domain.AssetStatusAvailable, store.assets["a1"].Status)
}

func TestRecomputeUnchangedStatusWritesNothing(t *testing.T) {
	svc, store, publisher := newReconcileFixture()
	seedAsset(store, "a1", domain.AssetStatusAvailable)

	result, err := svc.RecomputeStatus(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, result.Updated)
	require.NotNil(t, result.Target)
	assert.Equal(t, domain.AssetStatusAvailable, *result.Target)
	assert.Zero(t, store.assetStatusWrites)
	assert.Empty(t, publisher.published)
}

func TestRecomputeFuturedatedLogDoesNotOccupy(t *testing.T) {
	svc, store, _ := newReconcileFixture()
	seedAsset(store, "a1", domain.AssetStatusAvailable)
	store.logs["l1"] = domain.UsageLog{
		ID: "l1", AssetID: "a1",
		Status:    domain.UsageLogStatusNotStarted,
		StartTime: testClock.Add(time.Hour),
	}

	result, err := svc.RecomputeStatus(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, result.Updated)
	require.NotNil(t, result.Target)
	assert.Equal(t, domain.AssetStatusAvailable, *result.Target)
}
