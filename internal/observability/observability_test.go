package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/config"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/complaints", "POST", 201, 4*time.Millisecond)
	m.RecordRequest("/api/complaints", "POST", 201, 2*time.Millisecond)
	m.RecordRequest("/api/analytics", "GET", 200, time.Millisecond)
	m.RecordError("/api/complaints", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, RouteStat{Route: "/api/analytics", Method: "GET", Status: "200", Count: 1, AvgLatency: 1}, snap.Requests[0])
	assert.Equal(t, int64(2), snap.Requests[1].Count)
	assert.Equal(t, 3.0, snap.Requests[1].AvgLatency)
	assert.Equal(t, "VALIDATION_FAILED", snap.Errors[0].Status)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/api/complaints/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/complaints/17", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "/api/complaints/17", entries[0].ContextMap()["path"])

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, "/api/complaints/:id", snap.Requests[0].Route)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "bogus"}, config.AppConfig{Name: "complaint-service", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
