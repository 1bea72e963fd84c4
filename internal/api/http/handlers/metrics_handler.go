package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/observability"
)

// MetricsHandler exposes in-memory request counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// GetMetrics GET /metrics.
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
