package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// NewApp builds the fiber application with the global middleware chain.
// Routes are attached separately with RegisterRoutes.
func NewApp(cfg config.AppConfig, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
	})
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{
		Timeout:      cfg.RequestTimeout(),
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	return app
}
