package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// RepairService owns the repair ticket lifecycle and its asset-status side
// effects. Every state change runs inside one transaction; events publish
// only after the transaction commits.
type RepairService struct {
	store     repository.Store
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// RepairDependencies bundles collaborators for the repair service.
type RepairDependencies struct {
	Store     repository.Store
	Publisher events.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewRepairService constructs the service.
func NewRepairService(deps RepairDependencies) *RepairService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &RepairService{
		store:     deps.Store,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	AssetID          string
	ProblemDesc      string
	StartedAt        *time.Time
	ExpectedReturnAt *time.Time
}

// TransitionInput carries the optional fields a transition may set.
type TransitionInput struct {
	Note             *string
	VendorName       *string
	QuoteAmountCents *int64
}

// allowedTransitions is the explicit edge table for the ticket machine.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusQuotePending:  {domain.TicketStatusRepairPending},
	domain.TicketStatusRepairPending: {domain.TicketStatusCompleted},
	domain.TicketStatusCompleted:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create opens a quote-pending ticket and forces the asset into maintenance.
// It fails when the asset is missing, currently in use, or already has an
// open ticket.
func (s *RepairService) Create(ctx context.Context, input CreateTicketInput) (*domain.RepairTicket, error) {
	now := s.now()
	startedAt := now
	if input.StartedAt != nil {
		startedAt = *input.StartedAt
	}

	ticket := &domain.RepairTicket{
		ID:               uuid.NewString(),
		AssetID:          input.AssetID,
		Status:           domain.TicketStatusQuotePending,
		ProblemDesc:      strings.TrimSpace(input.ProblemDesc),
		StartedAt:        &startedAt,
		ExpectedReturnAt: input.ExpectedReturnAt,
		Timeline: []domain.TimelineEntry{
			{At: startedAt, To: domain.TicketStatusQuotePending},
		},
	}

	var pending []events.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByID(ctx, input.AssetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("asset", map[string]any{"asset_id": input.AssetID})
			}
			return err
		}
		if asset.Status == domain.AssetStatusInUse {
			return apperrors.NewAssetBusy(asset.ID)
		}

		open, err := tx.RepairTickets().ListOpenByAsset(ctx, asset.ID, "")
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return apperrors.NewOpenTicketExists(asset.ID)
		}

		if err := tx.RepairTickets().Create(ctx, ticket); err != nil {
			return err
		}
		// Maintenance is forced unconditionally; it dominates whatever
		// occupancy would otherwise derive.
		if err := tx.Assets().UpdateStatus(ctx, asset.ID, domain.AssetStatusMaintenance, now); err != nil {
			return err
		}

		pending = append(pending,
			events.AssetStatusChanged(asset.ID, domain.AssetStatusMaintenance, now),
			events.RepairTicketChanged(ticket.ID, asset.ID, now),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	s.logger.Info("repair ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("asset_id", ticket.AssetID),
	)
	return ticket, nil
}

// Transition moves a ticket along the allowed-edges table, appending to the
// timeline and applying the asset-status side effect for the target state.
func (s *RepairService) Transition(ctx context.Context, ticketID string, to domain.TicketStatus, input TransitionInput) (*domain.RepairTicket, error) {
	now := s.now()

	var result *domain.RepairTicket
	var pending []events.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.RepairTickets().GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("repair ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}

		from := ticket.Status
		if !isValidTransition(from, to) {
			return apperrors.NewInvalidTransition(string(from), string(to))
		}

		ticket.Timeline = append(ticket.Timeline, domain.TimelineEntry{
			At:   now,
			From: &from,
			To:   to,
			Note: input.Note,
		})
		ticket.Status = to

		if to == domain.TicketStatusRepairPending && from == domain.TicketStatusQuotePending {
			ticket.QuoteAt = &now
			if input.VendorName != nil {
				ticket.VendorName = input.VendorName
			}
			if input.QuoteAmountCents != nil {
				ticket.QuoteAmountCents = input.QuoteAmountCents
			}
		}
		if to == domain.TicketStatusCompleted {
			ticket.CompletedAt = &now
		}

		if err := tx.RepairTickets().Update(ctx, ticket); err != nil {
			return err
		}

		target, err := s.assetTargetAfter(ctx, tx, ticket, to == domain.TicketStatusCompleted, now)
		if err != nil {
			return err
		}
		if err := tx.Assets().UpdateStatus(ctx, ticket.AssetID, target, now); err != nil {
			return err
		}

		pending = append(pending,
			events.AssetStatusChanged(ticket.AssetID, target, now),
			events.RepairTicketChanged(ticket.ID, ticket.AssetID, now),
		)
		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return result, nil
}

// Delete removes a ticket and re-derives the asset status from whatever
// remains. Deleting a missing ticket is an idempotent success.
func (s *RepairService) Delete(ctx context.Context, ticketID string) error {
	now := s.now()

	var pending []events.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.RepairTickets().GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		if _, err := tx.RepairTickets().Delete(ctx, ticketID); err != nil {
			return err
		}

		target, err := s.assetTargetAfter(ctx, tx, ticket, true, now)
		if err != nil {
			return err
		}
		if err := tx.Assets().UpdateStatus(ctx, ticket.AssetID, target, now); err != nil {
			return err
		}

		pending = append(pending,
			events.AssetStatusChanged(ticket.AssetID, target, now),
			events.RepairTicketChanged(ticket.ID, ticket.AssetID, now),
		)
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(pending)
	return nil
}

// Get fetches a ticket.
func (s *RepairService) Get(ctx context.Context, ticketID string) (*domain.RepairTicket, error) {
	ticket, err := s.store.RepairTickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("repair ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// ListByAsset returns all tickets for an asset, newest first.
func (s *RepairService) ListByAsset(ctx context.Context, assetID string) ([]domain.RepairTicket, error) {
	return s.store.RepairTickets().ListByAsset(ctx, assetID)
}

// assetTargetAfter decides the asset status once the given ticket stops
// claiming it. When released is false the ticket is still open and the asset
// stays in maintenance. Otherwise the remaining open tickets and the
// occupancy logs are fed through the shared resolver, so a completed repair
// can land on in-use when a usage log already spans now.
func (s *RepairService) assetTargetAfter(ctx context.Context, tx repository.Store, ticket *domain.RepairTicket, released bool, now time.Time) (domain.AssetStatus, error) {
	if !released {
		return domain.AssetStatusMaintenance, nil
	}
	others, err := tx.RepairTickets().ListOpenByAsset(ctx, ticket.AssetID, ticket.ID)
	if err != nil {
		return "", err
	}
	logs, err := tx.UsageLogs().ListOpenByAsset(ctx, ticket.AssetID)
	if err != nil {
		return "", err
	}
	return domain.ResolveAssetStatus(others, logs, now), nil
}

func (s *RepairService) publish(pending []events.Event) {
	if s.publisher == nil {
		return
	}
	for _, ev := range pending {
		s.publisher.Publish(ev)
	}
}
