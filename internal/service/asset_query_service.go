package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// AssetQueryService serves the read-only asset surface.
type AssetQueryService struct {
	store repository.Store
}

// NewAssetQueryService constructs the service.
func NewAssetQueryService(store repository.Store) *AssetQueryService {
	return &AssetQueryService{store: store}
}

// Get fetches an asset.
func (s *AssetQueryService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.store.Assets().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, err
	}
	return asset, nil
}

// List returns a page of assets ordered by name.
func (s *AssetQueryService) List(ctx context.Context, limit, offset int) ([]domain.Asset, error) {
	return s.store.Assets().List(ctx, limit, offset)
}
