package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Settings keys used by the sync engine.
const (
	SettingLastSync = "last_sync_timestamp"
	SettingUserID   = "auth_user_id"
	SettingDeviceID = "device_id"
)

// Setting returns the value for key, or "" when unset.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting writes or replaces a settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// LastSync returns the persisted last successful sync time; ok=false when no
// sync has ever completed.
func (s *Store) LastSync(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.Setting(ctx, SettingLastSync)
	if err != nil || raw == "" {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt %s value %q: %w", SettingLastSync, raw, err)
	}
	return t, true, nil
}

// SetLastSync persists the last successful sync time.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	return s.SetSetting(ctx, SettingLastSync, t.UTC().Format(time.RFC3339Nano))
}
