package domain

import "time"

// TicketStatus enumerates repair ticket lifecycle states.
type TicketStatus string

const (
	TicketStatusQuotePending  TicketStatus = "quote-pending"
	TicketStatusRepairPending TicketStatus = "repair-pending"
	TicketStatusCompleted     TicketStatus = "completed"
)

// TimelineEntry is one append-only record of a ticket status change.
type TimelineEntry struct {
	At   time.Time     `json:"at"`
	From *TicketStatus `json:"from,omitempty"`
	To   TicketStatus  `json:"to"`
	Note *string       `json:"note,omitempty"`
}

// RepairTicket is the workflow record for an asset removed from service.
type RepairTicket struct {
	ID               string
	AssetID          string
	Status           TicketStatus
	ProblemDesc      string
	VendorName       *string
	QuoteAmountCents *int64
	QuoteAt          *time.Time
	CompletedAt      *time.Time
	StartedAt        *time.Time
	ExpectedReturnAt *time.Time
	Timeline         []TimelineEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Open reports whether the ticket still claims its asset for maintenance.
func (t *RepairTicket) Open() bool {
	return t.Status != TicketStatusCompleted
}
