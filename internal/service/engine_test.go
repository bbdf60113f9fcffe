package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redser06/homebudgeter/internal/models"
	"github.com/Redser06/homebudgeter/internal/remote"
	"github.com/Redser06/homebudgeter/internal/service"
	"github.com/Redser06/homebudgeter/internal/store"
)

// fakeRemote is an in-memory table store implementing service.RemoteStore,
// with switches to inject transport failures.
type fakeRemote struct {
	mu sync.Mutex

	rows map[string]map[string]remote.RawRecord

	ops            []string // "upsert table/id" / "delete table/id", successes only
	selectCalls    int
	upsertAttempts int

	failAllPushes   bool
	failNextUpserts int
	selectErr       map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rows:      make(map[string]map[string]remote.RawRecord),
		selectErr: make(map[string]error),
	}
}

func (f *fakeRemote) seed(table, id string, updatedAt time.Time, doc []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[table] == nil {
		f.rows[table] = make(map[string]remote.RawRecord)
	}
	f.rows[table][id] = remote.RawRecord{ID: id, UpdatedAt: updatedAt.UTC(), Doc: doc}
}

func (f *fakeRemote) SelectAll(_ context.Context, table string, since *time.Time) ([]remote.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	if err := f.selectErr[table]; err != nil {
		return nil, err
	}
	var out []remote.RawRecord
	for _, rec := range f.rows[table] {
		if since != nil && rec.UpdatedAt.Before(*since) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRemote) Upsert(_ context.Context, table, id string, updatedAt time.Time, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertAttempts++
	if f.failAllPushes {
		return errors.New("remote unavailable")
	}
	if f.failNextUpserts > 0 {
		f.failNextUpserts--
		return errors.New("transient remote error")
	}
	if f.rows[table] == nil {
		f.rows[table] = make(map[string]remote.RawRecord)
	}
	f.rows[table][id] = remote.RawRecord{ID: id, UpdatedAt: updatedAt.UTC(), Doc: doc}
	f.ops = append(f.ops, fmt.Sprintf("upsert %s/%s", table, id))
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAllPushes {
		return errors.New("remote unavailable")
	}
	delete(f.rows[table], id)
	f.ops = append(f.ops, fmt.Sprintf("delete %s/%s", table, id))
	return nil
}

func (f *fakeRemote) has(table, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[table][id]
	return ok
}

type fakeConn struct{ online atomic.Bool }

func (c *fakeConn) Reachable() bool { return c.online.Load() }

type fixture struct {
	engine *service.Engine
	store  *store.Store
	remote *fakeRemote
	conn   *fakeConn
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(t.TempDir(), "local.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if signedIn {
		require.NoError(t, st.SetSetting(context.Background(), store.SettingUserID, "user-1"))
	}

	fr := newFakeRemote()
	conn := &fakeConn{}
	conn.online.Store(true)

	eng := service.New(st, fr, conn, nil, logger, service.Options{})
	eng.Start()
	t.Cleanup(eng.Stop)

	return &fixture{engine: eng, store: st, remote: fr, conn: conn}
}

func queueDepth(t *testing.T, st *store.Store) int {
	t.Helper()
	depth, err := st.QueueDepth(context.Background())
	require.NoError(t, err)
	return depth
}

func transactionPayload(t *testing.T, id, amount string, mod time.Time) json.RawMessage {
	t.Helper()
	dto := models.TransactionDTO{
		ID:           id,
		AccountID:    "a1",
		Amount:       decimal.RequireFromString(amount),
		Date:         models.NewTimestamp(mod),
		Merchant:     "Grocer",
		LastModified: models.NewTimestamp(mod),
	}
	raw, err := json.Marshal(&dto)
	require.NoError(t, err)
	return raw
}

func categoryDoc(t *testing.T, id, name, limit string, mod time.Time) []byte {
	t.Helper()
	raw, err := json.Marshal(&models.BudgetCategoryDTO{
		ID:           id,
		Name:         name,
		MonthlyLimit: decimal.RequireFromString(limit),
		LastModified: models.NewTimestamp(mod),
	})
	require.NoError(t, err)
	return raw
}

func localCategory(t *testing.T, st *store.Store, id, name string, mod time.Time) {
	t.Helper()
	doc, err := json.Marshal(&models.BudgetCategory{
		ID:           id,
		Name:         name,
		MonthlyLimit: decimal.RequireFromString("100.00"),
		LastModified: mod,
	})
	require.NoError(t, err)
	require.NoError(t, st.UpsertRecord(context.Background(), models.TableBudgetCategories, id, mod, doc))
}

func fetchCategory(t *testing.T, st *store.Store, id string) (models.BudgetCategory, bool) {
	t.Helper()
	rec, ok, err := st.FetchByID(context.Background(), models.TableBudgetCategories, id)
	require.NoError(t, err)
	if !ok {
		return models.BudgetCategory{}, false
	}
	var cat models.BudgetCategory
	require.NoError(t, json.Unmarshal(rec.Doc, &cat))
	return cat, true
}

func TestOfflinePushQueuesAndDrainDelivers(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	mod := time.Now().UTC()

	f.conn.online.Store(false)
	require.NoError(t, f.engine.PushUpsert(ctx, models.TableTransactions, "t1",
		transactionPayload(t, "t1", "42.00", mod)))

	assert.False(t, f.remote.has(models.TableTransactions, "t1"), "remote must be untouched while offline")
	assert.Equal(t, 1, queueDepth(t, f.store))

	f.conn.online.Store(true)
	require.NoError(t, f.engine.Drain(ctx))

	assert.True(t, f.remote.has(models.TableTransactions, "t1"))
	assert.Zero(t, queueDepth(t, f.store))
}

func TestQueuePreservesUpsertThenDeleteOrder(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	mod := time.Now().UTC()

	f.conn.online.Store(false)
	require.NoError(t, f.engine.PushUpsert(ctx, models.TableTransactions, "t1",
		transactionPayload(t, "t1", "10.00", mod)))
	require.NoError(t, f.engine.PushDelete(ctx, models.TableTransactions, "t1"))

	f.conn.online.Store(true)
	require.NoError(t, f.engine.Drain(ctx))

	assert.Equal(t, []string{
		"upsert transactions/t1",
		"delete transactions/t1",
	}, f.remote.ops)
	assert.False(t, f.remote.has(models.TableTransactions, "t1"), "record must end up deleted")
	assert.Zero(t, queueDepth(t, f.store))
}

func TestDrainIsIdempotent(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// Online push that fails once falls back to the queue.
	f.remote.failNextUpserts = 1
	require.NoError(t, f.engine.PushUpsert(ctx, models.TableTransactions, "t1",
		transactionPayload(t, "t1", "5.00", time.Now().UTC())))
	assert.Equal(t, 1, queueDepth(t, f.store))

	require.NoError(t, f.engine.Drain(ctx))
	assert.Zero(t, queueDepth(t, f.store))
	attemptsAfterFirst := f.remote.upsertAttempts

	// Second drain with nothing pending is a no-op.
	require.NoError(t, f.engine.Drain(ctx))
	assert.Equal(t, attemptsAfterFirst, f.remote.upsertAttempts)
	assert.True(t, f.remote.has(models.TableTransactions, "t1"))
}

func TestRetryCeilingDropsPoisonEntry(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.conn.online.Store(false)
	require.NoError(t, f.engine.PushUpsert(ctx, models.TableTransactions, "t1",
		transactionPayload(t, "t1", "9.99", time.Now().UTC())))

	f.conn.online.Store(true)
	f.remote.failAllPushes = true

	// Six consecutive failures: the sixth pushes the entry past the ceiling.
	for range 6 {
		require.NoError(t, f.engine.Drain(ctx))
	}
	assert.Equal(t, 6, f.remote.upsertAttempts)
	assert.Zero(t, queueDepth(t, f.store), "poison entry must be dropped")

	// A seventh drain finds nothing to retry.
	require.NoError(t, f.engine.Drain(ctx))
	assert.Equal(t, 6, f.remote.upsertAttempts)
}

func TestLastWriteWins(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		remoteAt   time.Time
		wantRemote bool
	}{
		{"remote newer wins", base.Add(time.Minute), true},
		{"equal keeps local", base, false},
		{"remote older keeps local", base.Add(-time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, true)
			localCategory(t, f.store, "c1", "local-name", base)
			f.remote.seed(models.TableBudgetCategories, "c1", tc.remoteAt,
				categoryDoc(t, "c1", "remote-name", "200.00", tc.remoteAt))

			require.NoError(t, f.engine.FullSync(context.Background()))

			cat, ok := fetchCategory(t, f.store, "c1")
			require.True(t, ok)
			if tc.wantRemote {
				assert.Equal(t, "remote-name", cat.Name)
				assert.True(t, cat.LastModified.Equal(tc.remoteAt))
			} else {
				assert.Equal(t, "local-name", cat.Name)
				assert.True(t, cat.LastModified.Equal(base))
			}
		})
	}
}

func TestPullNeverDeletesLocalOnlyRecords(t *testing.T) {
	f := newFixture(t, true)
	localCategory(t, f.store, "c-local", "only-here", time.Now().UTC())

	require.NoError(t, f.engine.FullSync(context.Background()))

	_, ok := fetchCategory(t, f.store, "c-local")
	assert.True(t, ok, "reconciliation must not infer deletions from absence")
}

func TestDependencyOrderResolvesForeignKeys(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	mod := time.Now().UTC()

	accountDoc, err := json.Marshal(&models.AccountDTO{
		ID:             "a1",
		OwnerID:        "",
		Name:           "Joint",
		Kind:           "checking",
		Currency:       "EUR",
		OpeningBalance: decimal.RequireFromString("0.00"),
		LastModified:   models.NewTimestamp(mod),
	})
	require.NoError(t, err)

	f.remote.seed(models.TableAccounts, "a1", mod, accountDoc)
	f.remote.seed(models.TableTransactions, "t1", mod,
		transactionPayload(t, "t1", "42.00", mod))

	require.NoError(t, f.engine.FullSync(ctx))

	rec, ok, err := f.store.FetchByID(ctx, models.TableTransactions, "t1")
	require.NoError(t, err)
	require.True(t, ok)

	var tx models.Transaction
	require.NoError(t, json.Unmarshal(rec.Doc, &tx))
	assert.Equal(t, "a1", tx.AccountID)

	parentExists, err := f.store.Exists(ctx, models.TableAccounts, "a1")
	require.NoError(t, err)
	assert.True(t, parentExists, "account must be reconciled before the transaction referencing it")
}

func TestIncrementalSyncSkipsRecordsOlderThanCursor(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	cursor := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.SetLastSync(ctx, cursor))

	stale := cursor.Add(-24 * time.Hour)
	f.remote.seed(models.TableBudgetCategories, "c1", stale,
		categoryDoc(t, "c1", "old", "50.00", stale))

	require.NoError(t, f.engine.IncrementalSync(ctx))
	_, ok := fetchCategory(t, f.store, "c1")
	assert.False(t, ok, "server-side since filter excludes the stale record")

	// A full sync ignores the cursor and picks it up.
	require.NoError(t, f.engine.FullSync(ctx))
	_, ok = fetchCategory(t, f.store, "c1")
	assert.True(t, ok)
}

func TestSyncIsNoopWhenNotSignedIn(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.engine.FullSync(context.Background()))
	assert.Zero(t, f.remote.selectCalls, "unauthenticated sync must not touch the remote")
	assert.Equal(t, service.StateIdle, f.engine.Status().State)
}

func TestSyncReportsOfflineWhenUnreachable(t *testing.T) {
	f := newFixture(t, true)
	f.conn.online.Store(false)

	require.NoError(t, f.engine.FullSync(context.Background()))
	assert.Equal(t, service.StateOffline, f.engine.Status().State)
	assert.Zero(t, f.remote.selectCalls)
}

func TestPullFailureSurfacesAsFailedStatus(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	mod := time.Now().UTC()

	memberDoc, err := json.Marshal(&models.HouseholdMemberDTO{
		ID: "m1", Name: "Ana", Role: "adult", LastModified: models.NewTimestamp(mod),
	})
	require.NoError(t, err)
	f.remote.seed(models.TableHouseholdMembers, "m1", mod, memberDoc)
	f.remote.selectErr[models.TableAccounts] = errors.New("boom")

	err = f.engine.FullSync(ctx)
	require.Error(t, err)

	st := f.engine.Status()
	assert.Equal(t, service.StateFailed, st.State)
	assert.Contains(t, st.Err, models.TableAccounts)

	// Entity types reconciled before the failure stay applied.
	exists, err := f.store.Exists(ctx, models.TableHouseholdMembers, "m1")
	require.NoError(t, err)
	assert.True(t, exists)

	// No last-sync cursor is recorded for a failed cycle.
	_, ok, err := f.store.LastSync(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMalformedRemotePayloadFailsCycle(t *testing.T) {
	f := newFixture(t, true)

	f.remote.seed(models.TableBudgetCategories, "c1", time.Now().UTC(),
		[]byte(`{"id":"c1","monthly_limit":{"bad":"shape"}`))

	err := f.engine.FullSync(context.Background())
	require.Error(t, err)
	assert.Equal(t, service.StateFailed, f.engine.Status().State)
}

func TestSuccessfulSyncRecordsCursorAndStatus(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	before := time.Now().UTC()
	require.NoError(t, f.engine.FullSync(ctx))

	st := f.engine.Status()
	assert.Equal(t, service.StateSucceeded, st.State)
	assert.False(t, st.SyncedAt.Before(before))

	cursor, ok, err := f.store.LastSync(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cursor.Equal(st.SyncedAt))
}

func TestConnectivityTransitionsDriveStatusAndDrain(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	mod := time.Now().UTC()

	f.conn.online.Store(false)
	f.engine.SetOnline(false)
	assert.Equal(t, service.StateOffline, f.engine.Status().State)

	require.NoError(t, f.engine.PushUpsert(ctx, models.TableTransactions, "t1",
		transactionPayload(t, "t1", "7.50", mod)))

	f.conn.online.Store(true)
	f.engine.SetOnline(true)

	assert.Equal(t, service.StateIdle, f.engine.Status().State, "reconnection returns the engine to idle")
	assert.True(t, f.remote.has(models.TableTransactions, "t1"), "reconnection drains the queue")
	assert.Zero(t, queueDepth(t, f.store))
}

func TestStatusSubscriptionReceivesTransitions(t *testing.T) {
	f := newFixture(t, true)
	sub := f.engine.Subscribe()

	// Initial state is delivered immediately.
	first := <-sub
	assert.Equal(t, service.StateIdle, first.State)

	require.NoError(t, f.engine.FullSync(context.Background()))

	// Delivery coalesces; the latest observable state is Succeeded.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-sub:
			if st.State == service.StateSucceeded {
				assert.False(t, st.SyncedAt.IsZero())
				assert.Contains(t, st.Describe(), "synced")
				return
			}
		case <-deadline:
			t.Fatal("never observed Succeeded status")
		}
	}
}

func TestPushRejectsUnknownTable(t *testing.T) {
	f := newFixture(t, true)
	err := f.engine.PushUpsert(context.Background(), "no_such_table", "x", []byte(`{}`))
	assert.Error(t, err)
	err = f.engine.PushDelete(context.Background(), "no_such_table", "x")
	assert.Error(t, err)
}
