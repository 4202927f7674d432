package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/billing"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// UsageService owns the usage-log flow. It honors the reconciliation trigger
// contract: every mutation that could change occupancy is followed by a
// status recompute for the affected asset.
type UsageService struct {
	store     repository.Store
	reconcile *ReconcileService
	logger    *zap.Logger
	now       func() time.Time
}

// UsageDependencies bundles collaborators for the usage-log flow.
type UsageDependencies struct {
	Store     repository.Store
	Reconcile *ReconcileService
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewUsageService constructs the service.
func NewUsageService(deps UsageDependencies) *UsageService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &UsageService{
		store:     deps.Store,
		reconcile: deps.Reconcile,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

// CreateUsageLogInput describes a new occupancy record.
type CreateUsageLogInput struct {
	AssetID   string
	Status    domain.UsageLogStatus
	StartTime time.Time
	EndTime   *time.Time
}

// UpdateUsageLogInput carries partial edits; nil fields stay untouched.
type UpdateUsageLogInput struct {
	Status    *domain.UsageLogStatus
	StartTime *time.Time
	EndTime   *time.Time
}

// Create records a new usage log and reconciles the asset.
func (s *UsageService) Create(ctx context.Context, input CreateUsageLogInput) (*domain.UsageLog, error) {
	if input.Status == "" {
		input.Status = domain.UsageLogStatusInProgress
	}

	log := &domain.UsageLog{
		ID:        uuid.NewString(),
		AssetID:   input.AssetID,
		Status:    input.Status,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Assets().GetByID(ctx, input.AssetID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("asset", map[string]any{"asset_id": input.AssetID})
			}
			return err
		}
		return tx.UsageLogs().Create(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.triggerReconcile(ctx, log.AssetID)
	return log, nil
}

// Update applies partial edits and reconciles the asset.
func (s *UsageService) Update(ctx context.Context, id string, input UpdateUsageLogInput) (*domain.UsageLog, error) {
	var log *domain.UsageLog
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		log, err = tx.UsageLogs().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("usage log", map[string]any{"usage_log_id": id})
			}
			return err
		}
		if input.Status != nil {
			log.Status = *input.Status
		}
		if input.StartTime != nil {
			log.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			log.EndTime = input.EndTime
		}
		return tx.UsageLogs().Update(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.triggerReconcile(ctx, log.AssetID)
	return log, nil
}

// Complete closes an open log, freezes its cost snapshot through the shared
// calculator, and reconciles the asset. A log that already carries a
// snapshot keeps it (first write wins).
func (s *UsageService) Complete(ctx context.Context, id string) (*domain.UsageLog, error) {
	now := s.now()

	var log *domain.UsageLog
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		log, err = tx.UsageLogs().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("usage log", map[string]any{"usage_log_id": id})
			}
			return err
		}

		log.Status = domain.UsageLogStatusCompleted
		if log.EndTime == nil {
			log.EndTime = &now
		}
		if err := tx.UsageLogs().Update(ctx, log); err != nil {
			return err
		}

		if log.Snapshotted() {
			return nil
		}
		rate, err := effectiveHourlyRate(ctx, tx, log.AssetID)
		if err != nil {
			return err
		}
		snapshot := billing.Compute(billing.Input{
			StartISO:        log.StartTime.Format(time.RFC3339Nano),
			EndISO:          log.EndTime.Format(time.RFC3339Nano),
			HourlyRateCents: float64(rate),
		})
		if snapshot == nil {
			return nil
		}
		written, err := tx.UsageLogs().ApplySnapshot(ctx, log.ID,
			rate, snapshot.BillableHours, snapshot.CostCents,
			now, domain.SnapshotSourceLive)
		if err != nil {
			return err
		}
		if written {
			log.HourlyRateCentsSnapshot = &rate
			log.BillableHoursSnapshot = &snapshot.BillableHours
			log.CostCentsSnapshot = &snapshot.CostCents
			log.SnapshotAt = &now
			source := domain.SnapshotSourceLive
			log.SnapshotSource = &source
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.triggerReconcile(ctx, log.AssetID)
	return log, nil
}

// Delete removes a log (idempotent) and reconciles the asset when a row was
// actually deleted.
func (s *UsageService) Delete(ctx context.Context, id string) error {
	var assetID string
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		log, err := tx.UsageLogs().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		assetID = log.AssetID
		_, err = tx.UsageLogs().Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	if assetID != "" {
		s.triggerReconcile(ctx, assetID)
	}
	return nil
}

// ListByAsset returns logs for an asset, newest start first.
func (s *UsageService) ListByAsset(ctx context.Context, assetID string, limit, offset int) ([]domain.UsageLog, error) {
	return s.store.UsageLogs().ListByAsset(ctx, assetID, limit, offset)
}

func (s *UsageService) triggerReconcile(ctx context.Context, assetID string) {
	if s.reconcile == nil {
		return
	}
	if _, err := s.reconcile.RecomputeStatus(ctx, assetID); err != nil {
		s.logger.Warn("status reconcile after usage-log mutation failed",
			zap.String("asset_id", assetID),
			zap.Error(err),
		)
	}
}
