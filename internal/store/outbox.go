package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Redser06/homebudgeter/internal/models"
)

// Enqueue appends a pending mutation to the outbound queue. The entry is
// durable as soon as this returns: it survives a process restart and drains
// in insertion order.
func (s *Store) Enqueue(ctx context.Context, table, recordID string, op models.Operation, payload []byte) (models.QueueEntry, error) {
	if op == models.OpUpsert && len(payload) == 0 {
		return models.QueueEntry{}, fmt.Errorf("upsert entry for %s/%s requires a payload", table, recordID)
	}
	if op == models.OpDelete {
		payload = nil
	}

	entry := models.QueueEntry{
		ID:         uuid.NewString(),
		Table:      table,
		RecordID:   recordID,
		Operation:  op,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_outbox (id, table_name, record_id, operation, payload, retry_count, enqueued_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		entry.ID, entry.Table, entry.RecordID, string(entry.Operation),
		entry.Payload, formatStoredTime(entry.EnqueuedAt))
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("failed to enqueue %s %s/%s: %w", op, table, recordID, err)
	}

	entry.Position, err = res.LastInsertId()
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("failed to read queue position: %w", err)
	}

	s.logger.Debug("Queued outbound mutation",
		"entry_id", entry.ID,
		"table", table,
		"record_id", recordID,
		"operation", op,
	)
	return entry, nil
}

// PendingEntries returns the whole queue in strict enqueue order.
func (s *Store) PendingEntries(ctx context.Context) ([]models.QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, id, table_name, record_id, operation, payload, retry_count, enqueued_at
		FROM sync_outbox
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch queue entries: %w", err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var (
			entry      models.QueueEntry
			op         string
			payload    []byte
			enqueuedAt string
		)
		if err := rows.Scan(&entry.Position, &entry.ID, &entry.Table, &entry.RecordID,
			&op, &payload, &entry.RetryCount, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entry.Payload = payload
		entry.Operation = models.Operation(op)
		entry.EnqueuedAt, err = parseStoredTime(enqueuedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt enqueued_at for entry %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteEntry removes a queue entry after successful transmission (or a
// poison drop).
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_outbox WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry %s: %w", id, err)
	}
	return nil
}

// BumpRetry increments an entry's retry count and returns the new value.
func (s *Store) BumpRetry(ctx context.Context, id string) (int, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sync_outbox SET retry_count = retry_count + 1 WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to bump retry count for %s: %w", id, err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT retry_count FROM sync_outbox WHERE id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read retry count for %s: %w", id, err)
	}
	return count, nil
}

// QueueDepth returns the number of pending entries.
func (s *Store) QueueDepth(ctx context.Context) (int, error) {
	var depth int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sync_outbox`).Scan(&depth); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return depth, nil
}
