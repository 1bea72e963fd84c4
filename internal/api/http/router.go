package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Analytics      *handlers.AnalyticsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Mutating complaint routes sit behind the
// operator guard when auth is enabled.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Ready)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.GetMetrics)
	}

	api := app.Group("/api")
	api.Post("/complaints", cfg.Complaints.CreateComplaint)
	api.Get("/complaints", cfg.Complaints.ListComplaints)
	api.Get("/complaints/:id", cfg.Complaints.GetComplaint)
	api.Get("/analytics", cfg.Analytics.GetAnalytics)

	guard := cfg.AuthMiddleware.Guard(auth.RoleOperator)
	api.Patch("/complaints/:id/status", withGuard(guard, cfg.Complaints.UpdateStatus)...)
	api.Delete("/complaints/:id", withGuard(guard, cfg.Complaints.DeleteComplaint)...)
}

func withGuard(guard []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guard)+1)
	chain = append(chain, guard...)
	return append(chain, handler)
}
