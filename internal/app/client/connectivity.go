package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

type HealthChecker interface {
	Health(ctx context.Context) error
}

// ConnectivityMonitor опрашивает сервер и запускает синхронизацию при переходе в онлайн.
type ConnectivityMonitor struct {
	checker   HealthChecker
	onOnline  func()
	interval  time.Duration
	log       *slog.Logger
	mu        sync.RWMutex
	online    bool
	checkedAt time.Time
	known     bool
}

func NewConnectivityMonitor(checker HealthChecker, interval time.Duration, onOnline func(), log *slog.Logger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		checker:  checker,
		onOnline: onOnline,
		interval: interval,
		log:      log.With("component", "connectivity"),
	}
}

// Run первая проверка сразу, дальше по тикеру.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check одна проверка. Возвращает текущее состояние.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	err := m.checker.Health(ctx)
	if ctx.Err() != nil {
		return m.Online()
	}
	online := err == nil

	m.mu.Lock()
	wasOnline, known := m.online, m.known
	m.online, m.known = online, true
	m.checkedAt = time.Now()
	m.mu.Unlock()

	switch {
	case online && (!known || !wasOnline):
		m.log.Info("server reachable, triggering sync")
		m.onOnline()
	case !online && (!known || wasOnline):
		m.log.Warn("server unreachable", "error", err)
	}

	return online
}

func (m *ConnectivityMonitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}
