package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
)

const usageLogColumns = `id, asset_id, status, start_time, end_time, created_at,
       hourly_rate_cents_snapshot, billable_hours_snapshot, cost_cents_snapshot,
       snapshot_at, snapshot_source`

// UsageLogRepository encapsulates usage log persistence, including the
// write-once snapshot columns.
type UsageLogRepository interface {
	GetByID(ctx context.Context, id string) (*domain.UsageLog, error)
	Create(ctx context.Context, log *domain.UsageLog) error
	Update(ctx context.Context, log *domain.UsageLog) error
	Delete(ctx context.Context, id string) (bool, error)
	ListByAsset(ctx context.Context, assetID string, limit, offset int) ([]domain.UsageLog, error)

	// ListOpenByAsset returns every non-completed log for the asset, newest
	// start first. Whether a log occupies now is decided by the caller
	// against the full predicate; no row cap is applied.
	ListOpenByAsset(ctx context.Context, assetID string) ([]domain.UsageLog, error)

	// ListBackfillable selects completed logs with a non-null end time and
	// at least one null snapshot column, oldest start first.
	ListBackfillable(ctx context.Context, limit int) ([]domain.UsageLog, error)

	// ApplySnapshot populates the snapshot columns iff they are still null;
	// it reports whether the row was written (first write wins).
	ApplySnapshot(ctx context.Context, id string, rateCents, billableHours, costCents int64, at time.Time, source string) (bool, error)
}

type usageLogRepository struct {
	q Querier
}

// NewUsageLogRepository instantiates the repository over a pool or transaction.
func NewUsageLogRepository(q Querier) UsageLogRepository {
	return &usageLogRepository{q: q}
}

func (r *usageLogRepository) GetByID(ctx context.Context, id string) (*domain.UsageLog, error) {
	const query = `SELECT ` + usageLogColumns + ` FROM usage_logs WHERE id=$1`
	var log domain.UsageLog
	if err := scanUsageLog(r.q.QueryRow(ctx, query, id), &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *usageLogRepository) Create(ctx context.Context, log *domain.UsageLog) error {
	const query = `
        INSERT INTO usage_logs (id, asset_id, status, start_time, end_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.q.QueryRow(ctx, query,
		log.ID,
		log.AssetID,
		log.Status,
		log.StartTime,
		log.EndTime,
	).Scan(&log.CreatedAt)
}

func (r *usageLogRepository) Update(ctx context.Context, log *domain.UsageLog) error {
	const query = `UPDATE usage_logs SET status=$1, start_time=$2, end_time=$3 WHERE id=$4`
	cmd, err := r.q.Exec(ctx, query, log.Status, log.StartTime, log.EndTime, log.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *usageLogRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM usage_logs WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *usageLogRepository) ListByAsset(ctx context.Context, assetID string, limit, offset int) ([]domain.UsageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + usageLogColumns + `
        FROM usage_logs WHERE asset_id=$1
        ORDER BY start_time DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, assetID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsageLogs(rows)
}

func (r *usageLogRepository) ListOpenByAsset(ctx context.Context, assetID string) ([]domain.UsageLog, error) {
	const query = `SELECT ` + usageLogColumns + `
        FROM usage_logs
        WHERE asset_id=$1 AND status <> 'completed'
        ORDER BY start_time DESC`
	rows, err := r.q.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsageLogs(rows)
}

func (r *usageLogRepository) ListBackfillable(ctx context.Context, limit int) ([]domain.UsageLog, error) {
	const query = `SELECT ` + usageLogColumns + `
        FROM usage_logs
        WHERE status = 'completed'
          AND end_time IS NOT NULL
          AND (hourly_rate_cents_snapshot IS NULL
               OR billable_hours_snapshot IS NULL
               OR cost_cents_snapshot IS NULL)
        ORDER BY start_time ASC
        LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsageLogs(rows)
}

func (r *usageLogRepository) ApplySnapshot(ctx context.Context, id string, rateCents, billableHours, costCents int64, at time.Time, source string) (bool, error) {
	const query = `
        UPDATE usage_logs
        SET hourly_rate_cents_snapshot=$1, billable_hours_snapshot=$2,
            cost_cents_snapshot=$3, snapshot_at=$4, snapshot_source=$5
        WHERE id=$6
          AND hourly_rate_cents_snapshot IS NULL
          AND billable_hours_snapshot IS NULL
          AND cost_cents_snapshot IS NULL`
	cmd, err := r.q.Exec(ctx, query, rateCents, billableHours, costCents, at, source, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanUsageLog(row pgx.Row, log *domain.UsageLog) error {
	return row.Scan(
		&log.ID,
		&log.AssetID,
		&log.Status,
		&log.StartTime,
		&log.EndTime,
		&log.CreatedAt,
		&log.HourlyRateCentsSnapshot,
		&log.BillableHoursSnapshot,
		&log.CostCentsSnapshot,
		&log.SnapshotAt,
		&log.SnapshotSource,
	)
}

func collectUsageLogs(rows pgx.Rows) ([]domain.UsageLog, error) {
	var result []domain.UsageLog
	for rows.Next() {
		var log domain.UsageLog
		if err := scanUsageLog(rows, &log); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
