package dto

import (
	"time"

	"github.com/spec-kit/asset-service/internal/domain"
)

// AssetResponse is the read model for assets.
type AssetResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Type            domain.AssetType   `json:"type"`
	Status          domain.AssetStatus `json:"status"`
	Category        *string            `json:"category,omitempty"`
	HourlyRateCents int64              `json:"hourly_rate_cents"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// RecomputeStatusResponse reports a reconciliation outcome.
type RecomputeStatusResponse struct {
	Updated      bool                `json:"updated"`
	TargetStatus *domain.AssetStatus `json:"target_status"`
}
