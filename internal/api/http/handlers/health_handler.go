package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/persistence"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	healthy := true

	if h.pg == nil || h.pg.PoolHandle() == nil {
		checks["postgres"] = "not configured"
		healthy = false
	} else if err := h.pg.PoolHandle().Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}

	// Redis backs only the fire-and-forget audit sink, which degrades to a
	// no-op without it. An outage is reported in the checks but does not
	// fail readiness.
	if err := h.redis.Ping(c.Context()); err != nil {
		checks["redis"] = err.Error()
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
