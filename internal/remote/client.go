// Package remote is the thin per-table abstraction over the backend: select
// by table (optionally filtered by modification time), upsert by id, delete
// by id. Each row carries the record id, its modification timestamp, and the
// DTO document.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Redser06/homebudgeter/internal/models"
)

// RawRecord is one remote row before entity mapping.
type RawRecord struct {
	ID        string
	UpdatedAt time.Time
	Doc       []byte
}

// Client talks to the remote table store over a pgx pool. Every call carries
// its own timeout so a connectivity loss mid-cycle fails promptly instead of
// hanging the sync coordinator.
type Client struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	timeout time.Duration
}

// NewClient builds a pooled client and verifies the link with a ping.
func NewClient(ctx context.Context, connString string, opTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("no response from remote store: %w", err)
	}

	logger.Info("Connected to remote store")
	return &Client{pool: pool, logger: logger, timeout: opTimeout}, nil
}

// SelectAll fetches every row of table, or only rows with updated_at >= since
// when since is non-nil (incremental pull).
func (c *Client) SelectAll(ctx context.Context, table string, since *time.Time) ([]RawRecord, error) {
	if !models.KnownTable(table) {
		return nil, fmt.Errorf("table %s is not whitelisted", table)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Table names come from the registry whitelist, never from user input.
	query := fmt.Sprintf(`SELECT id, updated_at, doc FROM %s`, table)
	args := []any{}
	if since != nil {
		query += ` WHERE updated_at >= $1`
		args = append(args, since.UTC())
	}

	rows, err := c.pool.Query(opCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s failed: %w", table, err)
	}
	defer rows.Close()

	var records []RawRecord
	for rows.Next() {
		var rec RawRecord
		if err := rows.Scan(&rec.ID, &rec.UpdatedAt, &rec.Doc); err != nil {
			return nil, fmt.Errorf("scan of %s row failed: %w", table, err)
		}
		rec.UpdatedAt = rec.UpdatedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s failed: %w", table, err)
	}
	return records, nil
}

// Upsert writes one record, replacing any existing row with the same id.
func (c *Client) Upsert(ctx context.Context, table, id string, updatedAt time.Time, doc []byte) error {
	if !models.KnownTable(table) {
		return fmt.Errorf("table %s is not whitelisted", table)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, updated_at, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = excluded.updated_at,
			doc = excluded.doc`, table)

	if _, err := c.pool.Exec(opCtx, query, id, updatedAt.UTC(), doc); err != nil {
		return fmt.Errorf("upsert into %s failed: %w", table, err)
	}
	return nil
}

// Delete removes one record by id; deleting a missing id is a no-op.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	if !models.KnownTable(table) {
		return fmt.Errorf("table %s is not whitelisted", table)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	if _, err := c.pool.Exec(opCtx, query, id); err != nil {
		return fmt.Errorf("delete from %s failed: %w", table, err)
	}
	return nil
}

// Ping verifies the link; the connectivity monitor uses it as its probe.
func (c *Client) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.pool.Ping(opCtx)
}

// Close releases the pool.
func (c *Client) Close() {
	c.pool.Close()
}
