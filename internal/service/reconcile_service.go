package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/repository"
)

// ReconcileService recomputes an asset's derived status from its usage logs.
// Callers must invoke RecomputeStatus after any usage-log mutation that could
// change occupancy.
type ReconcileService struct {
	store     repository.Store
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// ReconcileDependencies bundles collaborators for the reconciliation engine.
type ReconcileDependencies struct {
	Store     repository.Store
	Publisher events.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewReconcileService constructs the service.
func NewReconcileService(deps ReconcileDependencies) *ReconcileService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ReconcileService{
		store:     deps.Store,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

// ReconcileResult reports what reconciliation decided.
type ReconcileResult struct {
	Updated bool
	Target  *domain.AssetStatus
}

// RecomputeStatus derives the asset's status from its active usage logs and
// writes it only when it changed. Missing or non-tracked assets are a no-op.
// A maintenance status short-circuits unchanged: only the ticket machine
// clears it, which is how maintenance dominates occupancy.
func (s *ReconcileService) RecomputeStatus(ctx context.Context, assetID string) (ReconcileResult, error) {
	now := s.now()

	var result ReconcileResult
	var pending []events.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByID(ctx, assetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if !asset.OccupancyTracked() {
			return nil
		}
		if asset.Status == domain.AssetStatusMaintenance {
			target := domain.AssetStatusMaintenance
			result = ReconcileResult{Updated: false, Target: &target}
			return nil
		}

		openTickets, err := tx.RepairTickets().ListOpenByAsset(ctx, assetID, "")
		if err != nil {
			return err
		}
		logs, err := tx.UsageLogs().ListOpenByAsset(ctx, assetID)
		if err != nil {
			return err
		}

		target := domain.ResolveAssetStatus(openTickets, logs, now)
		result = ReconcileResult{Target: &target}
		if target == asset.Status {
			return nil
		}

		if err := tx.Assets().UpdateStatus(ctx, assetID, target, now); err != nil {
			return err
		}
		result.Updated = true
		pending = append(pending, events.AssetStatusChanged(assetID, target, now))
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if s.publisher != nil {
		for _, ev := range pending {
			s.publisher.Publish(ev)
		}
	}
	if result.Updated {
		s.logger.Debug("asset status reconciled",
			zap.String("asset_id", assetID),
			zap.String("status", string(*result.Target)),
		)
	}
	return result, nil
}
