package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDependencies are checked by the readiness probe. Cache may be nil.
type HealthDependencies struct {
	Store      repository.ComplaintRepository
	Cache      Pinger
	Classifier classifier.Classifier
	Timeout    time.Duration
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	deps        HealthDependencies
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, deps HealthDependencies) *HealthHandler {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness. It answers within the probe timeout even while a
// remote model is still loading, reporting "loading" with 503.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.deps.Timeout)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.deps.Store.Ping(ctx); err != nil {
		depStatus["store"] = err.Error()
		ready = false
	} else {
		depStatus["store"] = "ok"
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	if h.deps.Classifier != nil {
		switch err := classifier.Ready(ctx, h.deps.Classifier); {
		case err == nil:
			depStatus["classifier"] = "ok"
		case errors.Is(err, classifier.ErrModelLoading):
			depStatus["classifier"] = "loading"
			ready = false
		default:
			depStatus["classifier"] = err.Error()
			ready = false
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"service":      h.serviceName,
			"version":      h.version,
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status": "not_ready",
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
