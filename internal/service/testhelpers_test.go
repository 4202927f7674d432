package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests.
// InTx runs the callback directly; these tests assert business outcomes,
// not rollback mechanics.
type memStore struct {
	assets  map[string]domain.Asset
	logs    map[string]domain.UsageLog
	tickets map[string]domain.RepairTicket
	rates   map[string]domain.CategoryRate

	assetStatusWrites int
}

func newMemStore() *memStore {
	return &memStore{
		assets:  make(map[string]domain.Asset),
		logs:    make(map[string]domain.UsageLog),
		tickets: make(map[string]domain.RepairTicket),
		rates:   make(map[string]domain.CategoryRate),
	}
}

func (s *memStore) Assets() repository.AssetRepository               { return memAssets{s} }
func (s *memStore) UsageLogs() repository.UsageLogRepository         { return memUsageLogs{s} }
func (s *memStore) RepairTickets() repository.RepairTicketRepository { return memTickets{s} }
func (s *memStore) CategoryRates() repository.CategoryRateRepository { return memRates{s} }

func (s *memStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type memAssets struct{ s *memStore }

func (r memAssets) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	asset, ok := r.s.assets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &asset, nil
}

func (r memAssets) List(_ context.Context, _, _ int) ([]domain.Asset, error) {
	var result []domain.Asset
	for _, asset := range r.s.assets {
		result = append(result, asset)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r memAssets) UpdateStatus(_ context.Context, id string, status domain.AssetStatus, updatedAt time.Time) error {
	asset, ok := r.s.assets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	asset.Status = status
	asset.UpdatedAt = updatedAt
	r.s.assets[id] = asset
	r.s.assetStatusWrites++
	return nil
}

type memUsageLogs struct{ s *memStore }

func (r memUsageLogs) GetByID(_ context.Context, id string) (*domain.UsageLog, error) {
	log, ok := r.s.logs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &log, nil
}

func (r memUsageLogs) Create(_ context.Context, log *domain.UsageLog) error {
	log.CreatedAt = time.Now()
	r.s.logs[log.ID] = *log
	return nil
}

func (r memUsageLogs) Update(_ context.Context, log *domain.UsageLog) error {
	if _, ok := r.s.logs[log.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.logs[log.ID] = *log
	return nil
}

func (r memUsageLogs) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.s.logs[id]; !ok {
		return false, nil
	}
	delete(r.s.logs, id)
	return true, nil
}

func (r memUsageLogs) ListByAsset(_ context.Context, assetID string, _, _ int) ([]domain.UsageLog, error) {
	var result []domain.UsageLog
	for _, log := range r.s.logs {
		if log.AssetID == assetID {
			result = append(result, log)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (r memUsageLogs) ListOpenByAsset(_ context.Context, assetID string) ([]domain.UsageLog, error) {
	var result []domain.UsageLog
	for _, log := range r.s.logs {
		if log.AssetID == assetID && log.Status != domain.UsageLogStatusCompleted {
			result = append(result, log)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (r memUsageLogs) ListBackfillable(_ context.Context, limit int) ([]domain.UsageLog, error) {
	var result []domain.UsageLog
	for _, log := range r.s.logs {
		if log.Status != domain.UsageLogStatusCompleted || log.EndTime == nil {
			continue
		}
		if log.Snapshotted() {
			continue
		}
		result = append(result, log)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r memUsageLogs) ApplySnapshot(_ context.Context, id string, rateCents, billableHours, costCents int64, at time.Time, source string) (bool, error) {
	log, ok := r.s.logs[id]
	if !ok {
		return false, nil
	}
	if log.Snapshotted() {
		return false, nil
	}
	log.HourlyRateCentsSnapshot = &rateCents
	log.BillableHoursSnapshot = &billableHours
	log.CostCentsSnapshot = &costCents
	log.SnapshotAt = &at
	log.SnapshotSource = &source
	r.s.logs[id] = log
	return true, nil
}

type memTickets struct{ s *memStore }

func (r memTickets) GetByID(_ context.Context, id string) (*domain.RepairTicket, error) {
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r memTickets) Create(_ context.Context, ticket *domain.RepairTicket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Update(_ context.Context, ticket *domain.RepairTicket) error {
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.s.tickets[id]; !ok {
		return false, nil
	}
	delete(r.s.tickets, id)
	return true, nil
}

func (r memTickets) ListByAsset(_ context.Context, assetID string) ([]domain.RepairTicket, error) {
	var result []domain.RepairTicket
	for _, ticket := range r.s.tickets {
		if ticket.AssetID == assetID {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r memTickets) ListOpenByAsset(_ context.Context, assetID, excludeID string) ([]domain.RepairTicket, error) {
	var result []domain.RepairTicket
	for _, ticket := range r.s.tickets {
		if ticket.AssetID == assetID && ticket.ID != excludeID && ticket.Open() {
			result = append(result, ticket)
		}
	}
	return result, nil
}

type memRates struct{ s *memStore }

func (r memRates) GetByCategory(_ context.Context, category string) (*domain.CategoryRate, error) {
	rate, ok := r.s.rates[category]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	published []events.Event
}

func (p *capturePublisher) Publish(ev events.Event) {
	p.published = append(p.published, ev)
}

func (p *capturePublisher) kinds() []events.Kind {
	result := make([]events.Kind, 0, len(p.published))
	for _, ev := range p.published {
		result = append(result, ev.Kind)
	}
	return result
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
