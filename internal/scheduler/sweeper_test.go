package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/alerts"
)

type fakeReconciler struct {
	marked []string
	err    error
	calls  int
}

func (f *fakeReconciler) ReconcileOverdue(context.Context) ([]string, error) {
	f.calls++
	return f.marked, f.err
}

type fakeScanner struct {
	counts   alerts.ScanCounts
	err      error
	gotField []string
	calls    int
}

func (f *fakeScanner) Scan(_ context.Context, fieldIDs []string) (alerts.ScanCounts, error) {
	f.calls++
	f.gotField = fieldIDs
	return f.counts, f.err
}

type fakeFields struct {
	ids []string
	err error
}

func (f *fakeFields) ActiveFieldIDs(context.Context) ([]string, error) {
	return f.ids, f.err
}

func newTestSweeper(r *fakeReconciler, s *fakeScanner, f *fakeFields) *Sweeper {
	return NewSweeper(SweeperConfig{
		Reconciler: r,
		Scanner:    s,
		Fields:     f,
		Logger:     slog.New(slog.DiscardHandler),
	})
}

func TestSweeperRunOnce(t *testing.T) {
	reconciler := &fakeReconciler{marked: []string{"t1", "t2"}}
	scanner := &fakeScanner{counts: alerts.ScanCounts{Overdue: 2, Total: 2}}
	fields := &fakeFields{ids: []string{"field-1", "field-2"}}
	s := newTestSweeper(reconciler, scanner, fields)

	counts, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, reconciler.calls)
	assert.Equal(t, 1, scanner.calls)
	assert.Equal(t, []string{"field-1", "field-2"}, scanner.gotField)
	assert.Equal(t, 2, counts.Total)
}

func TestSweeperSkipsScanWithoutActiveFields(t *testing.T) {
	reconciler := &fakeReconciler{}
	scanner := &fakeScanner{}
	s := newTestSweeper(reconciler, scanner, &fakeFields{})

	counts, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, counts.Total)
	assert.Equal(t, 0, scanner.calls)
}

func TestSweeperReconcileFailureStopsPass(t *testing.T) {
	reconciler := &fakeReconciler{err: fmt.Errorf("db down")}
	scanner := &fakeScanner{}
	s := newTestSweeper(reconciler, scanner, &fakeFields{ids: []string{"field-1"}})

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, scanner.calls, "scan must not run on stale statuses")
}

func TestSweeperFieldListFailure(t *testing.T) {
	s := newTestSweeper(&fakeReconciler{}, &fakeScanner{}, &fakeFields{err: fmt.Errorf("query failed")})

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
}
