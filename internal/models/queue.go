package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of mutation a queue entry carries.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// MaxRetries is the poison-message ceiling: an entry whose retry count
// exceeds this after a failed attempt is dropped instead of retried again.
const MaxRetries = 5

// QueueEntry is one pending mutation awaiting transmission to the remote
// backend. Entries are persisted in the local store and drain strictly in
// enqueue order, so a later delete for a record never overtakes an earlier
// upsert for the same record.
type QueueEntry struct {
	ID         string          `db:"id"`
	Position   int64           `db:"position"`
	Table      string          `db:"table_name"`
	RecordID   string          `db:"record_id"`
	Operation  Operation       `db:"operation"`
	Payload    json.RawMessage `db:"payload"` // DTO snapshot; nil for deletes
	RetryCount int             `db:"retry_count"`
	EnqueuedAt time.Time       `db:"enqueued_at"`
}
