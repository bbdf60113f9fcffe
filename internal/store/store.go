// Package store is the local authoritative on-device store: entity records,
// key-value settings, and the durable outbound queue, all in one embedded
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_records (
	table_name  TEXT NOT NULL,
	id          TEXT NOT NULL,
	modified_at TEXT NOT NULL,
	doc         BLOB NOT NULL,
	PRIMARY KEY (table_name, id)
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_outbox (
	position    INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	table_name  TEXT NOT NULL,
	record_id   TEXT NOT NULL,
	operation   TEXT NOT NULL,
	payload     BLOB,
	retry_count INTEGER NOT NULL DEFAULT 0,
	enqueued_at TEXT NOT NULL
);
`

// Store wraps the SQLite handle. SQLite has a single writer, so the pool is
// pinned to one connection; the sync engine serializes its own writes on top
// of that through its command loop.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the local database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Local store ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close shuts down the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LocalRecord is one stored entity row: the model serialized as JSON plus
// the indexed identity and modification columns.
type LocalRecord struct {
	ID       string
	Modified time.Time
	Doc      json.RawMessage
}

// FetchAll returns every record of one entity type.
func (s *Store) FetchAll(ctx context.Context, table string) ([]LocalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, modified_at, doc FROM local_records WHERE table_name = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s records: %w", table, err)
	}
	defer rows.Close()

	var records []LocalRecord
	for rows.Next() {
		var (
			rec      LocalRecord
			modified string
		)
		if err := rows.Scan(&rec.ID, &modified, &rec.Doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", table, err)
		}
		rec.Modified, err = parseStoredTime(modified)
		if err != nil {
			return nil, fmt.Errorf("corrupt modified_at for %s/%s: %w", table, rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FetchByID returns one record, or ok=false when it does not exist.
func (s *Store) FetchByID(ctx context.Context, table, id string) (LocalRecord, bool, error) {
	var (
		rec      LocalRecord
		modified string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, modified_at, doc FROM local_records WHERE table_name = ? AND id = ?`,
		table, id).Scan(&rec.ID, &modified, &rec.Doc)
	if errors.Is(err, sql.ErrNoRows) {
		return LocalRecord{}, false, nil
	}
	if err != nil {
		return LocalRecord{}, false, fmt.Errorf("failed to fetch %s/%s: %w", table, id, err)
	}
	rec.Modified, err = parseStoredTime(modified)
	if err != nil {
		return LocalRecord{}, false, fmt.Errorf("corrupt modified_at for %s/%s: %w", table, id, err)
	}
	return rec, true, nil
}

// Exists reports whether a record is present without decoding it.
func (s *Store) Exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM local_records WHERE table_name = ? AND id = ?`, table, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s/%s: %w", table, id, err)
	}
	return true, nil
}

// UpsertRecord writes a record, replacing any previous version.
func (s *Store) UpsertRecord(ctx context.Context, table, id string, modified time.Time, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_records (table_name, id, modified_at, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (table_name, id) DO UPDATE SET
			modified_at = excluded.modified_at,
			doc = excluded.doc`,
		table, id, formatStoredTime(modified), doc)
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", table, id, err)
	}
	return nil
}

// DeleteRecord removes a record; deleting a missing record is a no-op.
func (s *Store) DeleteRecord(ctx context.Context, table, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_records WHERE table_name = ? AND id = ?`, table, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	return nil
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStoredTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
