package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gadgetarian/service-tracker/internal/config"
)

func TestNewLoggerFallsBackOnUnknownLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Format: "xml"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewLoggerHonoursDebug(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG", Format: "console", Service: "svc"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "NOT_FOUND")
	m.RecordTransition("PROSES")
	m.RecordNotification("sent")
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("test")
	m.RecordTransition("PROSES")
	m.RecordTransition("PROSES")
	m.RecordNotification("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("PROSES")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	m := NewMetrics("test")
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/items/:id", "GET", "204")))
}
