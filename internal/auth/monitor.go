package auth

import (
	"context"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

// Monitor periodically checks the current session and forces a logout
// once it has expired. It is the only time-triggered transition in the
// subsystem; every other transition is caller-invoked.
type Monitor struct {
	service  *Service
	interval time.Duration
	logger   *logging.Logger
}

// NewMonitor creates a session monitor. The interval is typically 60s;
// a non-positive value falls back to that default.
func NewMonitor(service *Service, interval time.Duration, logger *logging.Logger) *Monitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		service:  service,
		interval: interval,
		logger:   logger.With("component", "session_monitor"),
	}
}

// Run blocks, checking once per interval, until the context is
// cancelled. It also prunes expired reset tokens on each tick.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("session monitor started", "interval", m.interval.String())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session monitor stopped")
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check forces a logout when the state is authenticated but the session
// is no longer valid.
func (m *Monitor) check(ctx context.Context) {
	state := m.service.AuthState()
	if state.IsAuthenticated && !m.service.IsSessionValid() {
		m.logger.Info("session expired, forcing logout")
		if err := m.service.expireSession(ctx); err != nil {
			m.logger.Error("forced logout failed", "error", err)
		}
	}

	if n, err := m.service.resets.DeleteExpired(ctx, m.service.now()); err != nil {
		m.logger.Warn("pruning expired reset tokens failed", "error", err)
	} else if n > 0 {
		m.logger.Debug("pruned expired reset tokens", "count", n)
	}
}
