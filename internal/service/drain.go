package service

import (
	"context"
	"fmt"

	"github.com/Redser06/homebudgeter/internal/models"
	"github.com/Redser06/homebudgeter/pkg/metrics"
)

// drainQueue attempts transmission of every pending entry in strict enqueue
// order. A failed entry stops the drain (later operations on the same record
// must not overtake it) unless the failure pushed it past the retry ceiling,
// in which case the entry is dropped and the drain continues. Drain failures
// never abort a surrounding sync cycle.
func (e *Engine) drainQueue(ctx context.Context) {
	if !e.conn.Reachable() {
		return
	}

	entries, err := e.store.PendingEntries(ctx)
	if err != nil {
		e.logger.Error("Failed to load outbound queue", "error", err)
		return
	}
	defer e.updateQueueDepth(ctx)

	for _, entry := range entries {
		l := e.logger.With(
			"entry_id", entry.ID,
			"table", entry.Table,
			"record_id", entry.RecordID,
			"operation", entry.Operation,
		)

		if err := e.transmit(ctx, entry); err != nil {
			count, bumpErr := e.store.BumpRetry(ctx, entry.ID)
			if bumpErr != nil {
				l.Error("Failed to record retry", "error", bumpErr)
				return
			}
			if count > models.MaxRetries {
				// Poison message: dropping loses the mutation, which is why
				// it is surfaced loudly instead of thrown.
				if delErr := e.store.DeleteEntry(ctx, entry.ID); delErr != nil {
					l.Error("Failed to drop poison entry", "error", delErr)
					return
				}
				metrics.QueueDrops.Inc()
				l.Error("Dropped poison queue entry after retry ceiling",
					"retries", count, "error", err)
				continue
			}
			l.Warn("Queue entry transmission failed, leaving for next drain",
				"retries", count, "error", err)
			return
		}

		if err := e.store.DeleteEntry(ctx, entry.ID); err != nil {
			// The remote call succeeded; a redundant retransmission later is
			// safe because upsert and delete are idempotent.
			l.Error("Transmitted entry could not be removed from queue", "error", err)
			return
		}
		l.Debug("Queue entry transmitted")
	}
}

func (e *Engine) transmit(ctx context.Context, entry models.QueueEntry) error {
	switch entry.Operation {
	case models.OpUpsert:
		modified, err := models.WireModified(entry.Payload)
		if err != nil {
			return err
		}
		return e.remote.Upsert(ctx, entry.Table, entry.RecordID, modified, entry.Payload)
	case models.OpDelete:
		return e.remote.Delete(ctx, entry.Table, entry.RecordID)
	default:
		return fmt.Errorf("unknown queue operation %q", entry.Operation)
	}
}
