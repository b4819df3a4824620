package logger

import (
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/config"
)

// New логгер для окружения. local: цветной вывод, dev и prod: JSON (debug и info).
func New(env string) *slog.Logger {
	return NewWithLevel(env, "")
}

// NewWithLevel level из LOG_LEVEL переопределяет уровень окружения, если задан.
func NewWithLevel(env, level string) *slog.Logger {
	lvl, explicit := parseLevel(level)

	switch env {
	case config.EnvLocal:
		if !explicit {
			lvl = slog.LevelDebug
		}
		return newPretty(os.Stdout, lvl)
	case config.EnvDev:
		if !explicit {
			lvl = slog.LevelDebug
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	default:
		if !explicit {
			lvl = slog.LevelInfo
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	}
}

func setupPrettySlog() *slog.Logger {
	return newPretty(os.Stdout, slog.LevelDebug)
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
