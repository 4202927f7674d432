package dto

import (
	"time"

	"github.com/spec-kit/asset-service/internal/domain"
)

// CreateRepairTicketRequest payload.
type CreateRepairTicketRequest struct {
	ProblemDesc      string     `json:"problem_desc"`
	StartedAt        *time.Time `json:"started_at"`
	ExpectedReturnAt *time.Time `json:"expected_return_at"`
}

// TransitionRepairTicketRequest payload.
type TransitionRepairTicketRequest struct {
	To               domain.TicketStatus `json:"to"`
	Note             *string             `json:"note"`
	VendorName       *string             `json:"vendor_name"`
	QuoteAmountCents *int64              `json:"quote_amount_cents"`
}

// TimelineEntryResponse is one timeline record.
type TimelineEntryResponse struct {
	At   time.Time            `json:"at"`
	From *domain.TicketStatus `json:"from,omitempty"`
	To   domain.TicketStatus  `json:"to"`
	Note *string              `json:"note,omitempty"`
}

// RepairTicketResponse is the read model for repair tickets.
type RepairTicketResponse struct {
	ID               string                  `json:"id"`
	AssetID          string                  `json:"asset_id"`
	Status           domain.TicketStatus     `json:"status"`
	ProblemDesc      string                  `json:"problem_desc"`
	VendorName       *string                 `json:"vendor_name,omitempty"`
	QuoteAmountCents *int64                  `json:"quote_amount_cents,omitempty"`
	QuoteAt          *time.Time              `json:"quote_at,omitempty"`
	CompletedAt      *time.Time              `json:"completed_at,omitempty"`
	StartedAt        *time.Time              `json:"started_at,omitempty"`
	ExpectedReturnAt *time.Time              `json:"expected_return_at,omitempty"`
	Timeline         []TimelineEntryResponse `json:"timeline"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}
