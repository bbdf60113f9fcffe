package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncCycles counts completed sync cycles by mode (full/incremental) and
	// outcome (succeeded/failed/offline/skipped).
	SyncCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycles_total",
		Help: "Total number of sync cycles by mode and outcome",
	}, []string{"mode", "outcome"})

	// SyncDuration measures end-to-end cycle duration. Incremental cycles on
	// a warm store should sit in the low buckets; full pulls can take longer.
	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_cycle_duration_seconds",
		Help:    "Duration of sync cycles in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"mode"})

	// RecordsReconciled counts per-table reconciliation decisions.
	RecordsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_records_reconciled_total",
		Help: "Records processed by the reconciliation engine, by table and action",
	}, []string{"table", "action"}) // action: created, updated, skipped

	// QueueDepth tracks pending outbound mutations. This is the primary
	// indicator of how far behind the remote store the device is.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_outbound_queue_depth",
		Help: "Current number of pending entries in the outbound queue",
	})

	// QueueDrops counts poison entries discarded after the retry ceiling.
	// Any increment is silent data loss and warrants investigation.
	QueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_outbound_queue_drops_total",
		Help: "Queue entries dropped after exceeding the retry ceiling",
	})

	// PushFallbacks counts direct push attempts that fell back to the queue.
	PushFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_push_fallbacks_total",
		Help: "Direct push attempts absorbed into the outbound queue",
	}, []string{"table"})

	// Reachable is the binary connectivity signal (1 reachable, 0 not).
	Reachable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_remote_reachable",
		Help: "Whether the remote store is currently reachable (1) or not (0)",
	})
)
