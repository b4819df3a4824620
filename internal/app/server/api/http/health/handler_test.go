package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestHandler_healthCheck(t *testing.T) {
	// Arrange
	handler := NewHandler(slog.Default(), huma.Middlewares{})
	handler.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	// Act
	output, err := handler.healthCheck(context.Background(), &Input{})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, "OK", output.Body.Status)
	assert.Equal(t, "2025-03-01T08:00:00Z", output.Body.Time)
}

func TestHandler_Route(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(slog.Default(), huma.Middlewares{}).SetupRoutes(api)

	resp := api.Get("/api/v1/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"OK"`)
}

func TestNewHandler(t *testing.T) {
	// Arrange
	log := slog.Default()
	middleware := huma.Middlewares{}

	// Act
	handler := NewHandler(log, middleware)

	// Assert
	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
	assert.NotNil(t, handler.middleware)
}
