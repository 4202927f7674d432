package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// AssetsHandler exposes the read-only asset surface plus the reconciliation
// trigger. Asset creation and general edits live in the external CRUD
// collaborator; status is never settable here.
type AssetsHandler struct {
	assets    *service.AssetQueryService
	reconcile *service.ReconcileService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assets *service.AssetQueryService, reconcile *service.ReconcileService) *AssetsHandler {
	return &AssetsHandler{assets: assets, reconcile: reconcile}
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	limit := parseIntQuery(c.Query("limit"), 50)
	offset := parseIntQuery(c.Query("offset"), 0)
	assets, err := h.assets.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	asset, err := h.assets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// RecomputeStatus POST /assets/:id/recompute-status.
func (h *AssetsHandler) RecomputeStatus(c *fiber.Ctx) error {
	result, err := h.reconcile.RecomputeStatus(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecomputeStatusResponse{
		Updated:      result.Updated,
		TargetStatus: result.Target,
	}})
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:              asset.ID,
		Name:            asset.Name,
		Type:            asset.Type,
		Status:          asset.Status,
		Category:        asset.Category,
		HourlyRateCents: asset.HourlyRateCents,
		CreatedAt:       asset.CreatedAt,
		UpdatedAt:       asset.UpdatedAt,
	}
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func requireBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
