package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertLog struct {
	gotCutoff time.Time
	purged    int64
	err       error
}

func (f *fakeAlertLog) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.gotCutoff = cutoff
	return f.purged, f.err
}

type fakeDashboardStore struct {
	cleared int
}

func (f *fakeDashboardStore) ClearOlderThan(time.Time) int {
	return f.cleared
}

func TestRetentionRunOnce(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	log := &fakeAlertLog{purged: 12}
	r := NewRetention(RetentionConfig{
		AlertLog:  log,
		Dashboard: &fakeDashboardStore{cleared: 3},
		MaxAge:    7 * 24 * time.Hour,
		Logger:    slog.New(slog.DiscardHandler),
		Now:       func() time.Time { return now },
	})

	removed, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, removed)
	assert.Equal(t, now.AddDate(0, 0, -7), log.gotCutoff)
}

func TestRetentionPurgeFailure(t *testing.T) {
	r := NewRetention(RetentionConfig{
		AlertLog: &fakeAlertLog{err: fmt.Errorf("db down")},
		Logger:   slog.New(slog.DiscardHandler),
	})

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)
}
