package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Redser06/homebudgeter/internal/models"
	"github.com/Redser06/homebudgeter/pkg/metrics"
)

// Push path: offline goes straight to the queue; online attempts the remote
// call and falls back to the queue on any failure. Data is never discarded
// on error.

func (e *Engine) pushUpsert(ctx context.Context, table, recordID string, payload json.RawMessage) error {
	if !models.KnownTable(table) {
		return fmt.Errorf("table %s is not whitelisted", table)
	}
	modified, err := models.WireModified(payload)
	if err != nil {
		return fmt.Errorf("invalid upsert payload for %s/%s: %w", table, recordID, err)
	}

	if !e.conn.Reachable() {
		return e.enqueue(ctx, table, recordID, models.OpUpsert, payload)
	}

	if err := e.remote.Upsert(ctx, table, recordID, modified, payload); err != nil {
		e.logger.Warn("Direct upsert failed, falling back to queue",
			"table", table, "record_id", recordID, "error", err)
		metrics.PushFallbacks.WithLabelValues(table).Inc()
		return e.enqueue(ctx, table, recordID, models.OpUpsert, payload)
	}
	return nil
}

func (e *Engine) pushDelete(ctx context.Context, table, recordID string) error {
	if !models.KnownTable(table) {
		return fmt.Errorf("table %s is not whitelisted", table)
	}

	if !e.conn.Reachable() {
		return e.enqueue(ctx, table, recordID, models.OpDelete, nil)
	}

	if err := e.remote.Delete(ctx, table, recordID); err != nil {
		e.logger.Warn("Direct delete failed, falling back to queue",
			"table", table, "record_id", recordID, "error", err)
		metrics.PushFallbacks.WithLabelValues(table).Inc()
		return e.enqueue(ctx, table, recordID, models.OpDelete, nil)
	}
	return nil
}

func (e *Engine) enqueue(ctx context.Context, table, recordID string, op models.Operation, payload json.RawMessage) error {
	if _, err := e.store.Enqueue(ctx, table, recordID, op, payload); err != nil {
		// Local persistence failure is the one case the caller must hear
		// about: the mutation is in neither the remote store nor the queue.
		return fmt.Errorf("failed to queue %s for %s/%s: %w", op, table, recordID, err)
	}
	e.updateQueueDepth(ctx)
	return nil
}
