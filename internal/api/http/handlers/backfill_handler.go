package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/service"
)

// BackfillHandler exposes the admin-only cost snapshot backfill.
type BackfillHandler struct {
	backfill *service.BackfillService
}

// NewBackfillHandler constructs handler.
func NewBackfillHandler(backfill *service.BackfillService) *BackfillHandler {
	return &BackfillHandler{backfill: backfill}
}

// Run POST /admin/cost-snapshots/backfill.
func (h *BackfillHandler) Run(c *fiber.Ctx) error {
	var req dto.BackfillRequest
	if len(c.Body()) > 0 {
		if err := requireBody(c, &req); err != nil {
			return err
		}
	}

	result, err := h.backfill.Run(c.Context(), req.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BackfillResponse{
		Scanned: result.Scanned,
		Updated: result.Updated,
	}})
}
