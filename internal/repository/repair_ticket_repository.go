package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
)

const repairTicketColumns = `id, asset_id, status, problem_desc, vendor_name,
       quote_amount_cents, quote_at, completed_at, started_at, expected_return_at,
       timeline, created_at, updated_at`

// RepairTicketRepository encapsulates repair ticket persistence. The timeline
// is stored as a JSONB array and only ever appended to.
type RepairTicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RepairTicket, error)
	Create(ctx context.Context, ticket *domain.RepairTicket) error
	Update(ctx context.Context, ticket *domain.RepairTicket) error
	Delete(ctx context.Context, id string) (bool, error)
	ListByAsset(ctx context.Context, assetID string) ([]domain.RepairTicket, error)

	// ListOpenByAsset returns the non-completed tickets for the asset,
	// optionally excluding one id. Used for the "any other open ticket"
	// invariant check and for status resolution.
	ListOpenByAsset(ctx context.Context, assetID, excludeID string) ([]domain.RepairTicket, error)
}

type repairTicketRepository struct {
	q Querier
}

// NewRepairTicketRepository instantiates the repository over a pool or transaction.
func NewRepairTicketRepository(q Querier) RepairTicketRepository {
	return &repairTicketRepository{q: q}
}

func (r *repairTicketRepository) GetByID(ctx context.Context, id string) (*domain.RepairTicket, error) {
	const query = `SELECT ` + repairTicketColumns + ` FROM repair_tickets WHERE id=$1`
	var ticket domain.RepairTicket
	if err := scanRepairTicket(r.q.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repairTicketRepository) Create(ctx context.Context, ticket *domain.RepairTicket) error {
	timeline, err := json.Marshal(ticket.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	const query = `
        INSERT INTO repair_tickets (id, asset_id, status, problem_desc, vendor_name,
            quote_amount_cents, quote_at, completed_at, started_at, expected_return_at, timeline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		ticket.ID,
		ticket.AssetID,
		ticket.Status,
		ticket.ProblemDesc,
		ticket.VendorName,
		ticket.QuoteAmountCents,
		ticket.QuoteAt,
		ticket.CompletedAt,
		ticket.StartedAt,
		ticket.ExpectedReturnAt,
		timeline,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *repairTicketRepository) Update(ctx context.Context, ticket *domain.RepairTicket) error {
	timeline, err := json.Marshal(ticket.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	const query = `
        UPDATE repair_tickets SET status=$1, problem_desc=$2, vendor_name=$3,
            quote_amount_cents=$4, quote_at=$5, completed_at=$6, started_at=$7,
            expected_return_at=$8, timeline=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.q.Exec(ctx, query,
		ticket.Status,
		ticket.ProblemDesc,
		ticket.VendorName,
		ticket.QuoteAmountCents,
		ticket.QuoteAt,
		ticket.CompletedAt,
		ticket.StartedAt,
		ticket.ExpectedReturnAt,
		timeline,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repairTicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM repair_tickets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *repairTicketRepository) ListByAsset(ctx context.Context, assetID string) ([]domain.RepairTicket, error) {
	const query = `SELECT ` + repairTicketColumns + `
        FROM repair_tickets WHERE asset_id=$1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRepairTickets(rows)
}

func (r *repairTicketRepository) ListOpenByAsset(ctx context.Context, assetID, excludeID string) ([]domain.RepairTicket, error) {
	const query = `SELECT ` + repairTicketColumns + `
        FROM repair_tickets
        WHERE asset_id=$1 AND status <> 'completed' AND id <> $2
        ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, assetID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRepairTickets(rows)
}

func scanRepairTicket(row pgx.Row, ticket *domain.RepairTicket) error {
	var timeline []byte
	if err := row.Scan(
		&ticket.ID,
		&ticket.AssetID,
		&ticket.Status,
		&ticket.ProblemDesc,
		&ticket.VendorName,
		&ticket.QuoteAmountCents,
		&ticket.QuoteAt,
		&ticket.CompletedAt,
		&ticket.StartedAt,
		&ticket.ExpectedReturnAt,
		&timeline,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return err
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &ticket.Timeline); err != nil {
			return fmt.Errorf("unmarshal timeline: %w", err)
		}
	}
	return nil
}

func collectRepairTickets(rows pgx.Rows) ([]domain.RepairTicket, error) {
	var result []domain.RepairTicket
	for rows.Next() {
		var ticket domain.RepairTicket
		if err := scanRepairTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
