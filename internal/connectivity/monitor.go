// Package connectivity watches network reachability of the remote store and
// exposes it as a level-triggered binary signal. Callbacks fire only on
// transitions; repeated probes in the same state are no-ops.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Redser06/homebudgeter/pkg/infra"
	"github.com/Redser06/homebudgeter/pkg/metrics"
)

// ProbeFunc reports whether the remote endpoint currently answers. The
// default wiring uses the remote client's Ping.
type ProbeFunc func(ctx context.Context) error

// Monitor polls the probe on an interval, tracking last-known state. While
// unreachable the probe spacing backs off so a dead link is not hammered;
// recovery resets it.
type Monitor struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *slog.Logger

	reachable atomic.Bool

	mu        sync.Mutex
	callbacks []func(online bool)
}

func NewMonitor(probe ProbeFunc, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logger,
	}
}

// Reachable returns the last-known state.
func (m *Monitor) Reachable() bool {
	return m.reachable.Load()
}

// OnChange registers a transition callback. Callbacks run on the monitor
// goroutine and must not block for long.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Run blocks until ctx is canceled, probing and publishing transitions.
func (m *Monitor) Run(ctx context.Context) {
	backoff := infra.NewBackoff(m.interval, 2*time.Minute, 2.0)

	// Establish the initial state before the first wait so consumers do not
	// start with a stale default.
	m.observe(ctx)

	for {
		wait := m.interval
		if !m.reachable.Load() {
			wait = backoff.Next()
		} else {
			backoff.Reset()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			m.observe(ctx)
		}
	}
}

func (m *Monitor) observe(ctx context.Context) {
	err := m.probe(ctx)
	online := err == nil

	if m.reachable.Swap(online) == online {
		return // level unchanged
	}

	if online {
		metrics.Reachable.Set(1)
		m.logger.Info("Connectivity restored")
	} else {
		metrics.Reachable.Set(0)
		m.logger.Warn("Connectivity lost", "error", err)
	}

	m.mu.Lock()
	callbacks := make([]func(bool), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(online)
	}
}
