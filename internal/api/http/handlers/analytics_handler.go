package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/service"
)

// AnalyticsHandler serves the dashboard rollup.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// GetAnalytics GET /api/analytics.
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	report, err := h.service.Report(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}
