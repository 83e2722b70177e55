// Package scheduler implements the periodic background services: the alert
// sweep (overdue reconciliation followed by the alert scan) and the
// retention sweep that purges aged alert records.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"cropwatch/internal/alerts"
)

// OverdueReconciler transitions past-due active tasks to overdue. Satisfied
// by tasks.Manager.
type OverdueReconciler interface {
	ReconcileOverdue(ctx context.Context) ([]string, error)
}

// AlertScanner runs one alert scan over a field set. Satisfied by
// alerts.Scanner.
type AlertScanner interface {
	Scan(ctx context.Context, fieldIDs []string) (alerts.ScanCounts, error)
}

// FieldSource yields the field IDs with active tasks. Satisfied by
// db.TaskRepository.
type FieldSource interface {
	ActiveFieldIDs(ctx context.Context) ([]string, error)
}

// Sweeper runs the alert sweep on an interval. Each pass reconciles overdue
// statuses first so the scan sees up-to-date task states.
type Sweeper struct {
	reconciler OverdueReconciler
	scanner    AlertScanner
	fields     FieldSource
	interval   time.Duration
	logger     *slog.Logger
}

// SweeperConfig holds the dependencies for creating a Sweeper.
type SweeperConfig struct {
	Reconciler OverdueReconciler
	Scanner    AlertScanner
	Fields     FieldSource
	Interval   time.Duration
	Logger     *slog.Logger
}

// NewSweeper creates a Sweeper. Interval defaults to 15 minutes.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Sweeper{
		reconciler: cfg.Reconciler,
		scanner:    cfg.Scanner,
		fields:     cfg.Fields,
		interval:   interval,
		logger:     logger,
	}
}

// RunOnce executes a single sweep pass: reconcile overdue tasks, then scan
// every field with active tasks.
func (s *Sweeper) RunOnce(ctx context.Context) (alerts.ScanCounts, error) {
	marked, err := s.reconciler.ReconcileOverdue(ctx)
	if err != nil {
		return alerts.ScanCounts{}, err
	}
	if len(marked) > 0 {
		s.logger.InfoContext(ctx, "marked tasks overdue", "count", len(marked))
	}

	fieldIDs, err := s.fields.ActiveFieldIDs(ctx)
	if err != nil {
		return alerts.ScanCounts{}, err
	}
	if len(fieldIDs) == 0 {
		return alerts.ScanCounts{}, nil
	}

	return s.scanner.Scan(ctx, fieldIDs)
}

// Run executes sweep passes on the configured interval until the context is
// cancelled. A failing pass is logged and the loop continues.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "alert sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "alert sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "alert sweep failed", "error", err)
			}
		}
	}
}
