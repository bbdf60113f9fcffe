package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redser06/homebudgeter/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := Open(filepath.Join(t.TempDir(), "local.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRecordLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mod := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.UpsertRecord(ctx, models.TableAccounts, "a1", mod, []byte(`{"id":"a1"}`)))

	rec, ok, err := st.FetchByID(ctx, models.TableAccounts, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a1", rec.ID)
	assert.True(t, rec.Modified.Equal(mod))
	assert.JSONEq(t, `{"id":"a1"}`, string(rec.Doc))

	exists, err := st.Exists(ctx, models.TableAccounts, "a1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Replace keeps identity, updates the rest.
	later := mod.Add(time.Hour)
	require.NoError(t, st.UpsertRecord(ctx, models.TableAccounts, "a1", later, []byte(`{"id":"a1","name":"x"}`)))
	all, err := st.FetchAll(ctx, models.TableAccounts)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Modified.Equal(later))

	require.NoError(t, st.DeleteRecord(ctx, models.TableAccounts, "a1"))
	_, ok, err = st.FetchByID(ctx, models.TableAccounts, "a1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	require.NoError(t, st.DeleteRecord(ctx, models.TableAccounts, "a1"))
}

func TestRecordsAreScopedByTable(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mod := time.Now().UTC()

	require.NoError(t, st.UpsertRecord(ctx, models.TableAccounts, "x", mod, []byte(`{}`)))
	require.NoError(t, st.UpsertRecord(ctx, models.TableTransactions, "x", mod, []byte(`{}`)))

	accounts, err := st.FetchAll(ctx, models.TableAccounts)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, st.DeleteRecord(ctx, models.TableAccounts, "x"))
	exists, err := st.Exists(ctx, models.TableTransactions, "x")
	require.NoError(t, err)
	assert.True(t, exists, "same id in another table must survive")
}

func TestSettings(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	val, err := st.Setting(ctx, SettingUserID)
	require.NoError(t, err)
	assert.Empty(t, val, "unset setting reads as empty")

	require.NoError(t, st.SetSetting(ctx, SettingUserID, "user-1"))
	require.NoError(t, st.SetSetting(ctx, SettingUserID, "user-2"))
	val, err = st.Setting(ctx, SettingUserID)
	require.NoError(t, err)
	assert.Equal(t, "user-2", val)
}

func TestLastSyncPersistence(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.LastSync(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no sync recorded yet")

	at := time.Date(2025, 4, 2, 9, 30, 0, 500000000, time.UTC)
	require.NoError(t, st.SetLastSync(ctx, at))

	got, ok, err := st.LastSync(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(at))
}

func TestOutboxFIFO(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Enqueue(ctx, models.TableTransactions, "t1", models.OpUpsert, []byte(`{"id":"t1"}`))
	require.NoError(t, err)
	_, err = st.Enqueue(ctx, models.TableTransactions, "t1", models.OpDelete, nil)
	require.NoError(t, err)
	_, err = st.Enqueue(ctx, models.TableAccounts, "a1", models.OpUpsert, []byte(`{"id":"a1"}`))
	require.NoError(t, err)

	entries, err := st.PendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, models.OpUpsert, entries[0].Operation)
	assert.Equal(t, "t1", entries[0].RecordID)
	assert.Equal(t, models.OpDelete, entries[1].Operation)
	assert.Nil(t, entries[1].Payload, "delete entries carry no payload")
	assert.Equal(t, "a1", entries[2].RecordID)
	assert.Less(t, entries[0].Position, entries[1].Position)
	assert.Less(t, entries[1].Position, entries[2].Position)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)
}

func TestOutboxUpsertRequiresPayload(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Enqueue(context.Background(), models.TableAccounts, "a1", models.OpUpsert, nil)
	assert.Error(t, err)
}

func TestOutboxRetryAndRemoval(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry, err := st.Enqueue(ctx, models.TableAccounts, "a1", models.OpUpsert, []byte(`{"id":"a1"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, entry.RetryCount)

	for want := 1; want <= 3; want++ {
		count, err := st.BumpRetry(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	require.NoError(t, st.DeleteEntry(ctx, entry.ID))
	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestOutboxSurvivesReopen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "local.db")
	ctx := context.Background()

	st, err := Open(path, logger)
	require.NoError(t, err)
	_, err = st.Enqueue(ctx, models.TableAccounts, "a1", models.OpUpsert, []byte(`{"id":"a1"}`))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path, logger)
	require.NoError(t, err)
	defer st.Close()

	entries, err := st.PendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a1", entries[0].RecordID)
}
