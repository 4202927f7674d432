package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/repository"
)

// effectiveHourlyRate resolves the billing rate for an asset: a category
// rate override wins over the asset's own stored rate; a missing asset
// prices at zero.
func effectiveHourlyRate(ctx context.Context, tx repository.Store, assetID string) (int64, error) {
	asset, err := tx.Assets().GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	if asset.Category != nil && *asset.Category != "" {
		override, err := tx.CategoryRates().GetByCategory(ctx, *asset.Category)
		if err != nil {
			return 0, err
		}
		if override != nil {
			return override.HourlyRateCents, nil
		}
	}
	return asset.HourlyRateCents, nil
}
