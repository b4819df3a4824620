package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWithLevel(t *testing.T) {
	ctx := context.Background()

	// LOG_LEVEL переопределяет уровень окружения
	assert.False(t, NewWithLevel(config.EnvLocal, "warn").Enabled(ctx, slog.LevelInfo))
	assert.True(t, NewWithLevel(config.EnvProd, "debug").Enabled(ctx, slog.LevelDebug))

	// неизвестное значение игнорируется
	assert.True(t, NewWithLevel(config.EnvDev, "loud").Enabled(ctx, slog.LevelDebug))
}

func TestPrettyHandler_Output(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelInfo).With("component", "sync")

	log.Debug("hidden")
	log.Info("queue drained", "synced", 3, "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "queue drained")
	assert.Contains(t, out, `"component": "sync"`)
	assert.Contains(t, out, `"synced": 3`)
	assert.Contains(t, out, `"error": "boom"`)
}
