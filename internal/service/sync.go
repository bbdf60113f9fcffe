package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Redser06/homebudgeter/internal/store"
	"github.com/Redser06/homebudgeter/pkg/metrics"
)

// runSync executes one pull cycle: drain the outbound queue, then reconcile
// every entity type in dependency order. Full cycles ignore the last sync
// time; incremental cycles filter server-side by it. Per-type reconciliation
// is not transactional across types: a failure surfaces as Failed without
// undoing earlier tables or the drain.
func (e *Engine) runSync(ctx context.Context, full bool) error {
	mode := "incremental"
	if full {
		mode = "full"
	}

	userID, err := e.store.Setting(ctx, store.SettingUserID)
	if err != nil {
		e.logger.Error("Failed to read auth state", "error", err)
		return err
	}
	if userID == "" {
		// Not signed in: silently skip, this is not an error.
		e.logger.Debug("Sync skipped: not signed in", "mode", mode)
		metrics.SyncCycles.WithLabelValues(mode, "skipped").Inc()
		return nil
	}

	if !e.conn.Reachable() {
		e.setStatus(Status{State: StateOffline})
		metrics.SyncCycles.WithLabelValues(mode, "offline").Inc()
		return nil
	}

	start := time.Now().UTC()
	e.setStatus(Status{State: StateSyncing})

	e.drainQueue(ctx)

	var since *time.Time
	if !full {
		last, ok, err := e.store.LastSync(ctx)
		if err != nil {
			return e.fail(mode, start, fmt.Errorf("failed to read last sync time: %w", err))
		}
		if ok {
			// Widen the window backwards; LWW makes re-delivery harmless.
			s := last.Add(-e.opts.SinceSlack)
			since = &s
		}
	}

	for _, binding := range e.tables {
		raw, err := e.remote.SelectAll(ctx, binding.Table, since)
		if err != nil {
			return e.fail(mode, start, fmt.Errorf("pull of %s failed: %w", binding.Table, err))
		}
		if err := binding.Reconcile(ctx, e, raw); err != nil {
			return e.fail(mode, start, fmt.Errorf("reconciliation of %s failed: %w", binding.Table, err))
		}
	}

	if err := e.store.SetLastSync(ctx, start); err != nil {
		return e.fail(mode, start, fmt.Errorf("failed to persist last sync time: %w", err))
	}

	e.setStatus(Status{State: StateSucceeded, SyncedAt: start})
	metrics.SyncCycles.WithLabelValues(mode, "succeeded").Inc()
	metrics.SyncDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	e.logger.Info("Sync cycle complete",
		"mode", mode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (e *Engine) fail(mode string, start time.Time, err error) error {
	if !e.conn.Reachable() {
		// Connectivity dropped mid-cycle; report Offline rather than Failed.
		e.setStatus(Status{State: StateOffline})
		metrics.SyncCycles.WithLabelValues(mode, "offline").Inc()
	} else {
		e.setStatus(Status{State: StateFailed, Err: err.Error()})
		metrics.SyncCycles.WithLabelValues(mode, "failed").Inc()
	}
	metrics.SyncDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	e.logger.Error("Sync cycle failed", "mode", mode, "error", err)
	return err
}
