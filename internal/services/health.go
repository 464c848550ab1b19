package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"phototagger/internal/domain"
)

// HealthMonitor polls the AI proxy's health endpoint on a fixed interval and
// exposes an availability snapshot. Callers gate queuing on IsAvailable; the
// monitor itself never refuses work.
type HealthMonitor struct {
	logger   *slog.Logger
	proxy    domain.AIProxyClient
	interval time.Duration

	mu    sync.Mutex
	state domain.HealthStatus

	done chan struct{}
	once sync.Once
}

// NewHealthMonitor returns a monitor probing proxy every interval.
// interval <= 0 falls back to 30 seconds.
func NewHealthMonitor(logger *slog.Logger, proxy domain.AIProxyClient, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthMonitor{
		logger:   logger,
		proxy:    proxy,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start probes once immediately, then on every interval tick until Stop.
func (m *HealthMonitor) Start(ctx context.Context) {
	go func() {
		m.Check(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Check(ctx)
			case <-m.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling loop. Safe to call more than once.
func (m *HealthMonitor) Stop() {
	m.once.Do(func() { close(m.done) })
}

// Check performs one probe with no retry and returns availability. A
// transport error or non-2xx status records the error and yields false.
func (m *HealthMonitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	m.state.IsChecking = true
	m.mu.Unlock()

	err := m.proxy.CheckHealth(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsChecking = false
	m.state.LastChecked = time.Now()
	if err != nil {
		if m.state.IsAvailable || m.state.Error == "" {
			m.logger.Warn("ai proxy unavailable", "err", err)
		}
		m.state.IsAvailable = false
		m.state.Error = err.Error()
		return false
	}
	m.state.IsAvailable = true
	m.state.Error = ""
	return true
}

// Status returns the current availability snapshot.
func (m *HealthMonitor) Status() domain.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
