package scheduler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/db"
	"cropwatch/internal/types"
)

var archiveNow = time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)

type fakeTaskArchive struct {
	tasks      []*types.FarmerTask
	listErr    error
	deletedIDs []string
	deleteErr  error
}

func (f *fakeTaskArchive) ListTerminalOlderThan(_ context.Context, _ time.Time, _ int) ([]*types.FarmerTask, error) {
	return f.tasks, f.listErr
}

func (f *fakeTaskArchive) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deletedIDs = ids
	return int64(len(ids)), nil
}

type fakeRecArchive struct {
	recs       []db.StoredRecommendation
	deletedIDs []string
}

func (f *fakeRecArchive) ListOlderThan(_ context.Context, _ time.Time, _ int) ([]db.StoredRecommendation, error) {
	return f.recs, nil
}

func (f *fakeRecArchive) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	f.deletedIDs = ids
	return int64(len(ids)), nil
}

func newTestArchiver(t *testing.T, tasks TaskArchive, recs RecommendationArchive) (*Archiver, string) {
	t.Helper()
	dir := t.TempDir()
	a := NewArchiver(ArchiverConfig{
		Tasks:           tasks,
		Recommendations: recs,
		Dir:             dir,
		Logger:          slog.New(slog.DiscardHandler),
		Now:             func() time.Time { return archiveNow },
	})
	return a, dir
}

// readArchive decodes every NDJSON line of a gzip archive file.
func readArchive(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestArchiverRunOnce(t *testing.T) {
	tasks := &fakeTaskArchive{tasks: []*types.FarmerTask{
		{ID: "t1", Title: "Old irrigation task", Status: types.TaskCompleted},
		{ID: "t2", Title: "Cancelled scouting", Status: types.TaskCancelled},
	}}
	recs := &fakeRecArchive{recs: []db.StoredRecommendation{
		{ID: "r1", FieldID: "field-1", AnalysisDate: archiveNow.AddDate(0, -4, 0), Payload: json.RawMessage(`{"field_id":"field-1"}`)},
	}}
	a, dir := newTestArchiver(t, tasks, recs)

	counts, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, counts.TasksArchived)
	assert.Equal(t, 1, counts.RecommendationsArchived)
	assert.Equal(t, []string{"t1", "t2"}, tasks.deletedIDs)
	assert.Equal(t, []string{"r1"}, recs.deletedIDs)

	taskRecords := readArchive(t, filepath.Join(dir, "tasks-20260415T090000Z.ndjson.gz"))
	require.Len(t, taskRecords, 2)
	assert.Equal(t, "Old irrigation task", taskRecords[0]["title"])

	recRecords := readArchive(t, filepath.Join(dir, "recommendations-20260415T090000Z.ndjson.gz"))
	require.Len(t, recRecords, 1)
	assert.Equal(t, "r1", recRecords[0]["id"])
	payload, ok := recRecords[0]["payload"].(map[string]any)
	require.True(t, ok, "payload stays embedded JSON, not base64")
	assert.Equal(t, "field-1", payload["field_id"])
}

func TestArchiverEmptyBatchesWriteNothing(t *testing.T) {
	a, dir := newTestArchiver(t, &fakeTaskArchive{}, &fakeRecArchive{})

	counts, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ArchiveCounts{}, counts)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no archive files for empty batches")
}

func TestArchiverDeleteFailureKeepsRows(t *testing.T) {
	tasks := &fakeTaskArchive{
		tasks:     []*types.FarmerTask{{ID: "t1", Status: types.TaskCompleted}},
		deleteErr: fmt.Errorf("db down"),
	}
	a, _ := newTestArchiver(t, tasks, &fakeRecArchive{})

	_, err := a.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, tasks.deletedIDs)
}

func TestArchiverListFailure(t *testing.T) {
	tasks := &fakeTaskArchive{listErr: fmt.Errorf("query failed")}
	a, _ := newTestArchiver(t, tasks, &fakeRecArchive{})

	_, err := a.RunOnce(context.Background())
	require.Error(t, err)
}
