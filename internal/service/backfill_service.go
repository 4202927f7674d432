package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/billing"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
)

const (
	defaultBackfillLimit = 2000
	maxBackfillLimit     = 5000
)

// BackfillService fills in missing cost snapshots on historical usage logs.
// A whole invocation is one transaction, so a crash rolls back cleanly and a
// re-run starts from the same selection.
type BackfillService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// BackfillDependencies bundles collaborators for the backfill job.
type BackfillDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
	Now    func() time.Time
}

// NewBackfillService constructs the service.
func NewBackfillService(deps BackfillDependencies) *BackfillService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &BackfillService{store: deps.Store, logger: deps.Logger, now: deps.Now}
}

// BackfillResult summarizes one batch run. Rows skipped for unparseable
// dates show up only as Scanned-Updated.
type BackfillResult struct {
	Scanned int
	Updated int
}

// Run selects completed, un-snapshotted usage logs (oldest start first, up to
// limit) and prices them through the shared calculator. The selection
// predicate excludes already-snapshotted rows, so a second run over the same
// data updates nothing.
func (s *BackfillService) Run(ctx context.Context, limit int) (BackfillResult, error) {
	if limit <= 0 {
		limit = defaultBackfillLimit
	}
	if limit > maxBackfillLimit {
		limit = maxBackfillLimit
	}
	now := s.now()

	var result BackfillResult
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		rows, err := tx.UsageLogs().ListBackfillable(ctx, limit)
		if err != nil {
			return err
		}
		result.Scanned = len(rows)

		for i := range rows {
			row := &rows[i]
			if row.EndTime == nil {
				continue
			}

			rate, err := effectiveHourlyRate(ctx, tx, row.AssetID)
			if err != nil {
				return err
			}

			snapshot := billing.Compute(billing.Input{
				StartISO:        row.StartTime.Format(time.RFC3339Nano),
				EndISO:          row.EndTime.Format(time.RFC3339Nano),
				HourlyRateCents: float64(rate),
			})
			if snapshot == nil {
				continue
			}

			written, err := tx.UsageLogs().ApplySnapshot(ctx, row.ID,
				rate, snapshot.BillableHours, snapshot.CostCents,
				now, domain.SnapshotSourceBackfill)
			if err != nil {
				return err
			}
			if written {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return BackfillResult{}, err
	}

	s.logger.Info("cost snapshot backfill finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}
