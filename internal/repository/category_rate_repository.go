package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
)

// CategoryRateRepository reads billing rate overrides keyed by category.
type CategoryRateRepository interface {
	// GetByCategory returns (nil, nil) when no override exists.
	GetByCategory(ctx context.Context, category string) (*domain.CategoryRate, error)
}

type categoryRateRepository struct {
	q Querier
}

// NewCategoryRateRepository instantiates the repository over a pool or transaction.
func NewCategoryRateRepository(q Querier) CategoryRateRepository {
	return &categoryRateRepository{q: q}
}

func (r *categoryRateRepository) GetByCategory(ctx context.Context, category string) (*domain.CategoryRate, error) {
	const query = `SELECT category, hourly_rate_cents, created_at, updated_at
        FROM category_rates WHERE category=$1`
	var rate domain.CategoryRate
	err := r.q.QueryRow(ctx, query, category).Scan(
		&rate.Category,
		&rate.HourlyRateCents,
		&rate.CreatedAt,
		&rate.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
