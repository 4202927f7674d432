package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/audit"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// UsageLogsHandler exposes the occupancy-log flow. Each mutation reconciles
// the owning asset's status via the service layer.
type UsageLogsHandler struct {
	usage *service.UsageService
	audit audit.Sink
}

// NewUsageLogsHandler constructs handler.
func NewUsageLogsHandler(usage *service.UsageService, sink audit.Sink) *UsageLogsHandler {
	return &UsageLogsHandler{usage: usage, audit: sink}
}

// Create POST /assets/:id/usage-logs.
func (h *UsageLogsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUsageLogRequest
	if err := requireBody(c, &req); err != nil {
		return err
	}
	if req.StartTime.IsZero() {
		return apperrors.NewValidationError("start_time required", nil)
	}

	log, err := h.usage.Create(c.Context(), service.CreateUsageLogInput{
		AssetID:   c.Params("id"),
		Status:    req.Status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return err
	}

	h.record(c, "usage_log.create", log.ID, nil, log)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": usageLogResponse(log)})
}

// Update PATCH /usage-logs/:id.
func (h *UsageLogsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUsageLogRequest
	if err := requireBody(c, &req); err != nil {
		return err
	}

	log, err := h.usage.Update(c.Context(), c.Params("id"), service.UpdateUsageLogInput{
		Status:    req.Status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return err
	}

	h.record(c, "usage_log.update", log.ID, nil, log)
	return c.JSON(fiber.Map{"data": usageLogResponse(log)})
}

// Complete POST /usage-logs/:id/complete.
func (h *UsageLogsHandler) Complete(c *fiber.Ctx) error {
	log, err := h.usage.Complete(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	h.record(c, "usage_log.complete", log.ID, nil, log)
	return c.JSON(fiber.Map{"data": usageLogResponse(log)})
}

// Delete DELETE /usage-logs/:id.
func (h *UsageLogsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.usage.Delete(c.Context(), id); err != nil {
		return err
	}
	h.record(c, "usage_log.delete", id, nil, nil)
	return c.SendStatus(http.StatusNoContent)
}

// ListByAsset GET /assets/:id/usage-logs.
func (h *UsageLogsHandler) ListByAsset(c *fiber.Ctx) error {
	limit := parseIntQuery(c.Query("limit"), 50)
	offset := parseIntQuery(c.Query("offset"), 0)
	logs, err := h.usage.ListByAsset(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UsageLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, usageLogResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *UsageLogsHandler) record(c *fiber.Ctx, action, entityID string, before, after any) {
	if h.audit == nil {
		return
	}
	actor := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = principal.SubjectID
	}
	h.audit.Record(c.Context(), audit.Entry{
		Action:     action,
		Actor:      actor,
		EntityType: "usage_log",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		RequestID:  requestID(c),
	})
}

func usageLogResponse(log *domain.UsageLog) dto.UsageLogResponse {
	return dto.UsageLogResponse{
		ID:                      log.ID,
		AssetID:                 log.AssetID,
		Status:                  log.Status,
		StartTime:               log.StartTime,
		EndTime:                 log.EndTime,
		CreatedAt:               log.CreatedAt,
		HourlyRateCentsSnapshot: log.HourlyRateCentsSnapshot,
		BillableHoursSnapshot:   log.BillableHoursSnapshot,
		CostCentsSnapshot:       log.CostCentsSnapshot,
		SnapshotAt:              log.SnapshotAt,
		SnapshotSource:          log.SnapshotSource,
	}
}

func requestID(c *fiber.Ctx) string {
	return c.Get("X-Request-ID")
}
