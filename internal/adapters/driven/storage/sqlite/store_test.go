package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testRun(id string, started time.Time) domain.Run {
	return domain.Run{
		ID:        id,
		Status:    domain.RunStatusRunning,
		StartedAt: started,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "ledger.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.LedgerStore().CreateRun(ctx, testRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	run, err := reopened.LedgerStore().GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
}

func TestLedgerStore_CreateAndGetRun(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, ledger.CreateRun(ctx, testRun("run-1", started)))

	run, err := ledger.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	assert.True(t, started.Equal(run.StartedAt))
	assert.True(t, run.FinishedAt.IsZero())
}

func TestLedgerStore_CreateRun_RequiresID(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()

	err := ledger.CreateRun(context.Background(), domain.Run{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedgerStore_GetRun_NotFound(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()

	_, err := ledger.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerStore_UpdateRun(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	run := testRun("run-1", started)
	require.NoError(t, ledger.CreateRun(ctx, run))

	run.Status = domain.RunStatusCompleted
	run.FinishedAt = started.Add(90 * time.Second)
	run.Records = 4
	run.Uploaded = 3
	run.Failures = 1
	run.OutputPath = "output.xlsx"
	require.NoError(t, ledger.UpdateRun(ctx, run))

	got, err := ledger.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.Equal(t, 4, got.Records)
	assert.Equal(t, 3, got.Uploaded)
	assert.Equal(t, 1, got.Failures)
	assert.Equal(t, "output.xlsx", got.OutputPath)
	assert.Equal(t, 90*time.Second, got.Duration())
}

func TestLedgerStore_UpdateRun_NotFound(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()

	err := ledger.UpdateRun(context.Background(), testRun("missing", time.Now()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerStore_ListRuns_NewestFirst(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, ledger.CreateRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := ledger.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	limited, err := ledger.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
	assert.Equal(t, "b", limited[1].ID)
}

func TestLedgerStore_Uploads(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.CreateRun(ctx, testRun("run-1", now)))

	uploaded, err := ledger.IsUploaded(ctx, "OF12345")
	require.NoError(t, err)
	assert.False(t, uploaded)

	require.NoError(t, ledger.MarkUploaded(ctx, domain.UploadEntry{
		GroupKey: "OF12345", RowID: 77, RunID: "run-1", Attachments: 2, UploadedAt: now,
	}))
	require.NoError(t, ledger.MarkUploaded(ctx, domain.UploadEntry{
		GroupKey: "OF99999", RowID: 78, RunID: "run-1", UploadedAt: now.Add(time.Second),
	}))

	uploaded, err = ledger.IsUploaded(ctx, "OF12345")
	require.NoError(t, err)
	assert.True(t, uploaded)

	entries, err := ledger.ListUploads(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "OF12345", entries[0].GroupKey)
	assert.Equal(t, int64(77), entries[0].RowID)
	assert.Equal(t, 2, entries[0].Attachments)
	assert.Equal(t, "OF99999", entries[1].GroupKey)
}

func TestLedgerStore_MarkUploaded_ReplacesEarlierEntry(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, ledger.CreateRun(ctx, testRun("run-1", now)))
	require.NoError(t, ledger.CreateRun(ctx, testRun("run-2", now.Add(time.Minute))))

	require.NoError(t, ledger.MarkUploaded(ctx, domain.UploadEntry{GroupKey: "OF1", RowID: 1, RunID: "run-1", UploadedAt: now}))
	require.NoError(t, ledger.MarkUploaded(ctx, domain.UploadEntry{GroupKey: "OF1", RowID: 2, RunID: "run-2", UploadedAt: now}))

	first, err := ledger.ListUploads(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := ledger.ListUploads(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, int64(2), second[0].RowID)
}

func TestLedgerStore_MarkUploaded_RequiresKey(t *testing.T) {
	ledger := setupTestStore(t).LedgerStore()

	err := ledger.MarkUploaded(context.Background(), domain.UploadEntry{RunID: "run-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
