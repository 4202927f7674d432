package dto

import (
	"time"

	"github.com/spec-kit/asset-service/internal/domain"
)

// CreateUsageLogRequest payload.
type CreateUsageLogRequest struct {
	Status    domain.UsageLogStatus `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time"`
}

// UpdateUsageLogRequest payload; nil fields are left untouched.
type UpdateUsageLogRequest struct {
	Status    *domain.UsageLogStatus `json:"status"`
	StartTime *time.Time             `json:"start_time"`
	EndTime   *time.Time             `json:"end_time"`
}

// UsageLogResponse is the read model for usage logs.
type UsageLogResponse struct {
	ID        string                `json:"id"`
	AssetID   string                `json:"asset_id"`
	Status    domain.UsageLogStatus `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time"`
	CreatedAt time.Time             `json:"created_at"`

	HourlyRateCentsSnapshot *int64     `json:"hourly_rate_cents_snapshot,omitempty"`
	BillableHoursSnapshot   *int64     `json:"billable_hours_snapshot,omitempty"`
	CostCentsSnapshot       *int64     `json:"cost_cents_snapshot,omitempty"`
	SnapshotAt              *time.Time `json:"snapshot_at,omitempty"`
	SnapshotSource          *string    `json:"snapshot_source,omitempty"`
}

// BackfillRequest payload.
type BackfillRequest struct {
	Limit int `json:"limit"`
}

// BackfillResponse summarizes a backfill run.
type BackfillResponse struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}
