package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"cropwatch/internal/db"
	"cropwatch/internal/types"
)

// TaskArchive is the task-repository slice the archiver needs. Satisfied by
// db.TaskRepository.
type TaskArchive interface {
	ListTerminalOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*types.FarmerTask, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// RecommendationArchive is the recommendation-repository slice the archiver
// needs. Satisfied by db.RecommendationRepository.
type RecommendationArchive interface {
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]db.StoredRecommendation, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// ArchiveCounts summarizes one archiver pass.
type ArchiveCounts struct {
	TasksArchived           int `json:"tasks_archived"`
	RecommendationsArchived int `json:"recommendations_archived"`
}

// Archiver exports terminal tasks and aged recommendation snapshots to
// gzip-compressed NDJSON files, then deletes the exported rows. Rows are
// deleted only after their archive file is fully written and synced, so a
// failed pass leaves the data in place for the next run.
type Archiver struct {
	tasks     TaskArchive
	recs      RecommendationArchive
	dir       string
	olderThan time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// ArchiverConfig holds the dependencies for creating an Archiver.
type ArchiverConfig struct {
	Tasks           TaskArchive
	Recommendations RecommendationArchive
	// Dir is the directory archive files are written to.
	Dir string
	// OlderThan is the age beyond which rows are archived. Defaults to 90
	// days.
	OlderThan time.Duration
	// BatchSize caps rows per pass. Defaults to 500.
	BatchSize int
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewArchiver creates an Archiver.
func NewArchiver(cfg ArchiverConfig) *Archiver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	olderThan := cfg.OlderThan
	if olderThan <= 0 {
		olderThan = 90 * 24 * time.Hour
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Archiver{
		tasks:     cfg.Tasks,
		recs:      cfg.Recommendations,
		dir:       cfg.Dir,
		olderThan: olderThan,
		batchSize: batchSize,
		logger:    logger,
		now:       now,
	}
}

// RunOnce archives one batch of terminal tasks and one batch of aged
// recommendation snapshots.
func (a *Archiver) RunOnce(ctx context.Context) (ArchiveCounts, error) {
	var counts ArchiveCounts
	now := a.now().UTC()
	cutoff := now.Add(-a.olderThan)

	archived, err := a.archiveTasks(ctx, cutoff, now)
	if err != nil {
		return counts, err
	}
	counts.TasksArchived = archived

	archived, err = a.archiveRecommendations(ctx, cutoff, now)
	if err != nil {
		return counts, err
	}
	counts.RecommendationsArchived = archived

	a.logger.InfoContext(ctx, "archive pass complete",
		"cutoff", cutoff,
		"tasks_archived", counts.TasksArchived,
		"recommendations_archived", counts.RecommendationsArchived,
	)
	return counts, nil
}

func (a *Archiver) archiveTasks(ctx context.Context, cutoff, now time.Time) (int, error) {
	batch, err := a.tasks.ListTerminalOlderThan(ctx, cutoff, a.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	records := make([]any, len(batch))
	ids := make([]string, len(batch))
	for i, t := range batch {
		records[i] = t
		ids[i] = t.ID
	}

	path := a.archivePath("tasks", now)
	if err := writeArchiveFile(path, records); err != nil {
		return 0, err
	}

	deleted, err := a.tasks.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (a *Archiver) archiveRecommendations(ctx context.Context, cutoff, now time.Time) (int, error) {
	batch, err := a.recs.ListOlderThan(ctx, cutoff, a.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	records := make([]any, len(batch))
	ids := make([]string, len(batch))
	for i, rec := range batch {
		records[i] = rec
		ids[i] = rec.ID
	}

	path := a.archivePath("recommendations", now)
	if err := writeArchiveFile(path, records); err != nil {
		return 0, err
	}

	deleted, err := a.recs.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (a *Archiver) archivePath(kind string, now time.Time) string {
	return filepath.Join(a.dir, fmt.Sprintf("%s-%s.ndjson.gz", kind, now.Format("20060102T150405Z")))
}

// writeArchiveFile writes records as gzip-compressed NDJSON, syncing before
// close so the caller can safely delete the source rows afterward.
func writeArchiveFile(path string, records []any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("archiver: creating archive dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archiver: creating %s: %w", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			zw.Close()
			return fmt.Errorf("archiver: encoding record: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archiver: closing gzip stream: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("archiver: syncing %s: %w", path, err)
	}
	return nil
}
