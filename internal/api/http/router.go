package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/http/handlers"
	"github.com/spec-kit/asset-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Assets         *handlers.AssetsHandler
	UsageLogs      *handlers.UsageLogsHandler
	RepairTickets  *handlers.RepairTicketsHandler
	Backfill       *handlers.BackfillHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	assets := protected.Group("/assets", auth.RequireRole(auth.RoleViewer))
	assets.Get("/", cfg.Assets.List)
	assets.Get("/:id", cfg.Assets.Get)
	assets.Get("/:id/usage-logs", cfg.UsageLogs.ListByAsset)
	assets.Get("/:id/repair-tickets", cfg.RepairTickets.ListByAsset)

	operator := protected.Group("", auth.RequireRole(auth.RoleOperator))
	operator.Post("/assets/:id/recompute-status", cfg.Assets.RecomputeStatus)
	operator.Post("/assets/:id/usage-logs", cfg.UsageLogs.Create)
	operator.Patch("/usage-logs/:id", cfg.UsageLogs.Update)
	operator.Post("/usage-logs/:id/complete", cfg.UsageLogs.Complete)
	operator.Delete("/usage-logs/:id", cfg.UsageLogs.Delete)
	operator.Post("/assets/:id/repair-tickets", cfg.RepairTickets.Create)
	operator.Get("/repair-tickets/:id", cfg.RepairTickets.Get)
	operator.Post("/repair-tickets/:id/transition", cfg.RepairTickets.Transition)
	operator.Delete("/repair-tickets/:id", cfg.RepairTickets.Delete)

	admin := protected.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.Post("/cost-snapshots/backfill", cfg.Backfill.Run)

	protected.Get("/events/stream", auth.RequireRole(auth.RoleViewer), cfg.Events.Stream)
}
