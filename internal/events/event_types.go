package events

import (
	"time"

	"github.com/spec-kit/asset-service/internal/domain"
)

// Kind enumerates broadcast event identifiers.
type Kind string

const (
	KindAssetStatusChanged  Kind = "asset_status_changed"
	KindRepairTicketChanged Kind = "repair_ticket_changed"
	KindKeepAlive           Kind = "keepalive"
)

// Event is one broadcast frame. Exactly one JSON object per message, tagged
// by event name; keep-alive frames carry only the tag.
type Event struct {
	Kind      Kind               `json:"event"`
	AssetID   string             `json:"asset_id,omitempty"`
	TicketID  string             `json:"ticket_id,omitempty"`
	Status    domain.AssetStatus `json:"status,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitzero"`
}

// AssetStatusChanged builds the event emitted after a committed status write.
func AssetStatusChanged(assetID string, status domain.AssetStatus, updatedAt time.Time) Event {
	return Event{
		Kind:      KindAssetStatusChanged,
		AssetID:   assetID,
		Status:    status,
		UpdatedAt: updatedAt,
	}
}

// RepairTicketChanged builds the event emitted after a committed ticket write.
func RepairTicketChanged(ticketID, assetID string, updatedAt time.Time) Event {
	return Event{
		Kind:      KindRepairTicketChanged,
		TicketID:  ticketID,
		AssetID:   assetID,
		UpdatedAt: updatedAt,
	}
}
