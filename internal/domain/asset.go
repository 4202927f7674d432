package domain

import "time"

// AssetStatus enumerates the derived availability states for assets.
type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "available"
	AssetStatusInUse       AssetStatus = "in-use"
	AssetStatusMaintenance AssetStatus = "maintenance"
)

// AssetType enumerates asset kinds tracked by the service.
type AssetType string

const (
	// AssetTypeEquipment is the only type whose status is derived from
	// occupancy; other types are ignored by reconciliation.
	AssetTypeEquipment AssetType = "equipment"
	AssetTypeFacility  AssetType = "facility"
)

// Asset is a trackable lab equipment unit. Status is derived: it is written
// only by the reconciliation engine and the repair ticket machine, never by
// general edits.
type Asset struct {
	ID              string
	Name            string
	Type            AssetType
	Status          AssetStatus
	Category        *string
	HourlyRateCents int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OccupancyTracked reports whether usage logs drive this asset's status.
func (a *Asset) OccupancyTracked() bool {
	return a.Type == AssetTypeEquipment
}
