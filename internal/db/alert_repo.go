package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/types"
)

// AlertRepository provides data access for the sent_alerts table, the
// append-only alert dispatch log. The table carries a unique constraint on
// (task_id, alert_kind); Claim exploits it to make dispatch idempotent.
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new AlertRepository backed by the given
// database connection (pool or transaction).
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Claim atomically records intent to send one alert kind for one task.
// It returns true when this caller won the (task_id, alert_kind) row and
// must dispatch, false when another sweep already claimed it. Concurrent
// claims for the same pair resolve to exactly one winner.
func (r *AlertRepository) Claim(ctx context.Context, taskID string, kind types.AlertKind, recipient string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO sent_alerts (id, task_id, alert_kind, recipient, sent_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (task_id, alert_kind) DO NOTHING`,
		uuid.NewString(),
		taskID,
		string(kind),
		recipient,
		now,
	)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to claim alert", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListForTask retrieves the dispatch log for one task, oldest first.
func (r *AlertRepository) ListForTask(ctx context.Context, taskID string) ([]types.SentAlertRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, task_id, alert_kind, recipient, sent_at
		 FROM sent_alerts
		 WHERE task_id = $1
		 ORDER BY sent_at ASC`,
		taskID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list sent alerts", err)
	}
	defer rows.Close()

	var records []types.SentAlertRecord
	for rows.Next() {
		var (
			rec  types.SentAlertRecord
			kind string
		)
		if scanErr := rows.Scan(&rec.ID, &rec.TaskID, &kind, &rec.Recipient, &rec.SentAt); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan sent alert row", scanErr)
		}
		rec.Kind = types.AlertKind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating sent alert rows", err)
	}
	return records, nil
}

// PurgeOlderThan deletes dispatch log rows sent before the cutoff and
// returns the number removed. Used by the retention sweep; dispatch
// deduplication only needs rows from the current task lifecycle.
func (r *AlertRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sent_alerts WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to purge sent alerts", err)
	}
	return tag.RowsAffected(), nil
}
