package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jank324/paper-lapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore opens a store backed by a throwaway database file.
func newSQLiteStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	impl, ok := store.(*RunStoreImpl)
	require.True(t, ok)
	return impl
}

// TestRunStoreLifecycle tests a full run through the SQLite backend.
func TestRunStoreLifecycle(t *testing.T) {
	store := newSQLiteStore(t)

	startTime := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	params := map[string]any{"every": "day", "fps": 2}

	runID, err := store.BeginRun(startTime, "/papers/thesis", params)
	require.NoError(t, err)
	assert.Positive(t, runID)

	frames := []schema.FrameRecord{
		{Index: 0, CommitHash: "a0000000", CommitTime: startTime.Add(-time.Hour), Status: schema.StatusSuccess, FramePath: "/frames/0000.png", Pages: 4, BuildMs: 1200},
		{Index: 1, CommitHash: "b0000000", CommitTime: startTime, Status: schema.StatusFailure, Reason: schema.ReasonCompilerError, BuildMs: 300},
	}
	for _, rec := range frames {
		require.NoError(t, store.RecordFrame(runID, rec))
	}

	endTime := startTime.Add(5 * time.Minute)
	manifest := &schema.Manifest{
		HeadHash:  "b0000000",
		Policy:    schema.EndOfDay,
		Attempted: 2,
		Succeeded: 1,
		Failed:    1,
	}
	require.NoError(t, store.EndRun(runID, endTime, manifest))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, run.StartTime.Equal(startTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(endTime))
	assert.Equal(t, "/papers/thesis", run.RepoPath)
	assert.Equal(t, "b0000000", run.HeadHash)
	assert.Equal(t, "day", run.Policy)
	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.Canceled)
	require.NotNil(t, run.ConfigParams)
	assert.Contains(t, *run.ConfigParams, `"every":"day"`)

	stored, err := store.GetAllFrames()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "a0000000", stored[0].CommitHash)
	assert.Equal(t, 4, stored[0].Pages)
	assert.Equal(t, string(schema.ReasonCompilerError), stored[1].Reason)
	assert.Equal(t, int64(300), stored[1].BuildMs)
}

// TestRunStoreStatus tests status reporting before and after activity.
func TestRunStoreStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, 0, status.TotalFrames)
	assert.True(t, status.LastRunTime.IsZero())

	startTime := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(startTime, "/papers/thesis", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordFrame(runID, schema.FrameRecord{
		Index: 0, CommitHash: "a0000000", CommitTime: startTime, Status: schema.StatusSuccess,
	}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 1, status.TotalFrames)
	assert.True(t, status.LastRunTime.Equal(startTime))
}

// TestRunStoreCanceledRun tests that cancellation is persisted.
func TestRunStoreCanceledRun(t *testing.T) {
	store := newSQLiteStore(t)

	startTime := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(startTime, "/papers/thesis", nil)
	require.NoError(t, err)

	manifest := &schema.Manifest{Policy: schema.EveryCommit, Canceled: true, Attempted: 1, Failed: 1}
	require.NoError(t, store.EndRun(runID, startTime.Add(time.Minute), manifest))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Canceled)
}

// TestRunStoreNoneBackend tests that the disabled backend is a no-op.
func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "/papers/thesis", nil)
	require.NoError(t, err)
	assert.Zero(t, runID)

	require.NoError(t, store.RecordFrame(runID, schema.FrameRecord{}))
	require.NoError(t, store.EndRun(runID, time.Now(), &schema.Manifest{}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	require.NoError(t, store.Close())
}

// TestQuoteTableName tests identifier quoting per backend.
func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`paperlapse_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"paperlapse_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"paperlapse_frames"`, quoteTableName(framesTable, schema.SQLiteBackend))
}
