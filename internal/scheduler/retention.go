package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// AlertLog purges aged rows from the sent-alert dispatch log. Satisfied by
// db.AlertRepository.
type AlertLog interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DashboardStore drops aged dashboard entries. Satisfied by
// alerts.Dashboard.
type DashboardStore interface {
	ClearOlderThan(cutoff time.Time) int
}

// Retention purges dispatched-alert records past their retention window.
// Purging the dispatch log re-arms deduplication for a task's alert kinds,
// so the window must comfortably exceed any task's active lifetime.
type Retention struct {
	alertLog  AlertLog
	dashboard DashboardStore
	maxAge    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// RetentionConfig holds the dependencies for creating a Retention service.
type RetentionConfig struct {
	AlertLog  AlertLog
	Dashboard DashboardStore
	MaxAge    time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewRetention creates a Retention service. MaxAge defaults to 30 days.
func NewRetention(cfg RetentionConfig) *Retention {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &Retention{
		alertLog:  cfg.AlertLog,
		dashboard: cfg.Dashboard,
		maxAge:    maxAge,
		logger:    logger,
		now:       now,
	}
}

// RunOnce purges one batch of aged alert records from the dispatch log and
// the dashboard, returning the total rows removed.
func (r *Retention) RunOnce(ctx context.Context) (int, error) {
	cutoff := r.now().UTC().Add(-r.maxAge)

	purged, err := r.alertLog.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cleared := 0
	if r.dashboard != nil {
		cleared = r.dashboard.ClearOlderThan(cutoff)
	}

	r.logger.InfoContext(ctx, "alert retention sweep complete",
		"cutoff", cutoff,
		"log_rows_purged", purged,
		"dashboard_cleared", cleared,
	)
	return int(purged) + cleared, nil
}
