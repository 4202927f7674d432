package domain

import "time"

// CategoryRate overrides an asset's own stored hourly rate for billing.
type CategoryRate struct {
	Category        string
	HourlyRateCents int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
