package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
)

const assetColumns = `id, name, type, status, category, hourly_rate_cents, created_at, updated_at`

// AssetRepository reads assets and writes their derived status. Creation and
// general edits belong to the external asset CRUD collaborator.
type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, limit, offset int) ([]domain.Asset, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssetStatus, updatedAt time.Time) error
}

type assetRepository struct {
	q Querier
}

// NewAssetRepository instantiates the repository over a pool or transaction.
func NewAssetRepository(q Querier) AssetRepository {
	return &assetRepository{q: q}
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	const query = `SELECT ` + assetColumns + ` FROM assets WHERE id=$1`
	var asset domain.Asset
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Type,
		&asset.Status,
		&asset.Category,
		&asset.HourlyRateCents,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, limit, offset int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + assetColumns + ` FROM assets ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(
			&asset.ID,
			&asset.Name,
			&asset.Type,
			&asset.Status,
			&asset.Category,
			&asset.HourlyRateCents,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func (r *assetRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus, updatedAt time.Time) error {
	const query = `UPDATE assets SET status=$1, updated_at=$2 WHERE id=$3`
	cmd, err := r.q.Exec(ctx, query, status, updatedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
