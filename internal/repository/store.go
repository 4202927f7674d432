package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories behind one handle and provides the
// transaction boundary every state-changing core operation runs inside.
type Store interface {
	Assets() AssetRepository
	UsageLogs() UsageLogRepository
	RepairTickets() RepairTicketRepository
	CategoryRates() CategoryRateRepository

	// InTx runs fn against a store bound to a single transaction,
	// committing on nil and rolling back on error. Nested calls reuse the
	// enclosing transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	q    Querier
}

// NewStore builds the Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, q: pool}
}

func (s *pgStore) Assets() AssetRepository               { return NewAssetRepository(s.q) }
func (s *pgStore) UsageLogs() UsageLogRepository         { return NewUsageLogRepository(s.q) }
func (s *pgStore) RepairTickets() RepairTicketRepository { return NewRepairTicketRepository(s.q) }
func (s *pgStore) CategoryRates() CategoryRateRepository { return NewCategoryRateRepository(s.q) }

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(pgx.Tx); ok {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgStore{pool: s.pool, q: tx})
	})
}
