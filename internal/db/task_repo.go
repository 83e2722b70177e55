package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"cropwatch/internal/types"
)

// taskColumns is the canonical column list for farmer_tasks, matching the
// scan order in scanTask.
const taskColumns = `id, title, description, category, priority, status, field_id,
	created_at, due_date, estimated_duration, cost_estimate, auto_generated,
	ai_confidence, completion_notes, completed_at, zone_id, area_hectares,
	coordinates, equipment_needed, materials_needed, weather_dependent, risk_factors`

// priorityRankSQL orders tasks urgent-first within a due date. Unknown
// priority values sink to the bottom.
const priorityRankSQL = `CASE priority
	WHEN 'urgent' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0 END`

// TaskRepository provides data access for the farmer_tasks and task_events
// tables. Tasks are never physically deleted in normal operation; lifecycle
// changes go through UpdateStatus and each change leaves a task_events row.
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a new TaskRepository backed by the given
// database connection (pool or transaction).
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task. The caller must set the ID and all required
// fields before calling.
func (r *TaskRepository) Create(ctx context.Context, t *types.FarmerTask) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO farmer_tasks
		 (id, title, description, category, priority, status, field_id,
		  created_at, due_date, estimated_duration, cost_estimate, auto_generated,
		  ai_confidence, completion_notes, completed_at, zone_id, area_hectares,
		  coordinates, equipment_needed, materials_needed, weather_dependent, risk_factors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		         $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		t.ID,
		t.Title,
		t.Description,
		string(t.Category),
		string(t.Priority),
		string(t.Status),
		t.FieldID,
		t.CreatedAt,
		t.DueDate,
		t.EstimatedMins,
		t.CostEstimate,
		t.AutoGenerated,
		t.AIConfidence,
		nilIfEmpty(t.CompletionNotes),
		t.CompletedAt,
		nilIfEmpty(t.ZoneID),
		t.AreaHa,
		t.Coordinates,
		t.EquipmentNeeded,
		t.MaterialsNeeded,
		t.WeatherDependent,
		t.RiskFactors,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create task", err)
	}
	return nil
}

// GetByID retrieves a single task.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*types.FarmerTask, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM farmer_tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get task", err)
	}
	return t, nil
}

// List retrieves tasks matching the filter, ordered by due date ascending
// and priority descending within a date. FieldIDs is required; the other
// filter dimensions are applied only when non-empty.
func (r *TaskRepository) List(ctx context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error) {
	if len(filter.FieldIDs) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "at least one field id is required", nil)
	}

	conditions := []string{"field_id = ANY($1)"}
	args := []any{filter.FieldIDs}
	argIdx := 2

	if len(filter.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argIdx))
		args = append(args, statusStrings(filter.Statuses))
		argIdx++
	}
	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d)", argIdx))
		args = append(args, categoryStrings(filter.Categories))
		argIdx++
	}
	if len(filter.Priorities) > 0 {
		conditions = append(conditions, fmt.Sprintf("priority = ANY($%d)", argIdx))
		args = append(args, priorityStrings(filter.Priorities))
		argIdx++
	}

	query := `SELECT ` + taskColumns + ` FROM farmer_tasks
		 WHERE ` + strings.Join(conditions, " AND ") + `
		 ORDER BY due_date ASC, ` + priorityRankSQL + ` DESC`

	return r.queryTasks(ctx, query, args...)
}

// ListOverdue retrieves active tasks whose due date has passed, for the
// given fields, ordered most-overdue first.
func (r *TaskRepository) ListOverdue(ctx context.Context, fieldIDs []string, now time.Time) ([]*types.FarmerTask, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM farmer_tasks
		 WHERE field_id = ANY($1)
		   AND status IN ('pending', 'in_progress', 'overdue')
		   AND due_date < $2
		 ORDER BY due_date ASC, `+priorityRankSQL+` DESC`,
		fieldIDs, now,
	)
}

// ListUpcoming retrieves active tasks due within the window [now, now+days).
func (r *TaskRepository) ListUpcoming(ctx context.Context, fieldIDs []string, now time.Time, days int) ([]*types.FarmerTask, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM farmer_tasks
		 WHERE field_id = ANY($1)
		   AND status IN ('pending', 'in_progress')
		   AND due_date >= $2 AND due_date < $3
		 ORDER BY due_date ASC, `+priorityRankSQL+` DESC`,
		fieldIDs, now, now.AddDate(0, 0, days),
	)
}

// ActiveFieldIDs returns the distinct field IDs that still have tasks in a
// non-terminal status. The alert sweep scans exactly this field set.
func (r *TaskRepository) ActiveFieldIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT field_id FROM farmer_tasks
		 WHERE status IN ('pending', 'in_progress', 'overdue')
		 ORDER BY field_id`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list active field ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan field id", scanErr)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating field ids", err)
	}
	return ids, nil
}

// UpdateStatus sets a task's status, completion notes, and completion
// timestamp. Returns a not-found error when the task does not exist.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status types.TaskStatus, notes string, completedAt *time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE farmer_tasks SET
			status = $1,
			completion_notes = COALESCE($2, completion_notes),
			completed_at = $3
		 WHERE id = $4`,
		string(status),
		nilIfEmpty(notes),
		completedAt,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update task status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
	}
	return nil
}

// MarkOverdue transitions every active task whose due date has passed to
// overdue, returning the affected task IDs so callers can audit and alert
// on them.
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE farmer_tasks SET status = 'overdue'
		 WHERE status IN ('pending', 'in_progress')
		   AND due_date < $1
		 RETURNING id`,
		now,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to mark overdue tasks", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan overdue task id", scanErr)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating overdue task ids", err)
	}
	return ids, nil
}

// ListTerminalOlderThan retrieves completed and cancelled tasks whose due
// date passed before the cutoff, oldest first. Used by the archiver; normal
// operation never deletes tasks.
func (r *TaskRepository) ListTerminalOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*types.FarmerTask, error) {
	if limit <= 0 {
		limit = 500
	}
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM farmer_tasks
		 WHERE status IN ('completed', 'cancelled')
		   AND due_date < $1
		 ORDER BY due_date ASC
		 LIMIT $2`,
		cutoff, limit,
	)
}

// DeleteByIDs removes archived tasks by ID, returning the number deleted.
// task_events rows go with them via ON DELETE CASCADE.
func (r *TaskRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM farmer_tasks WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete archived tasks", err)
	}
	return tag.RowsAffected(), nil
}

// AppendEvent records one task audit event.
func (r *TaskRepository) AppendEvent(ctx context.Context, e *types.TaskEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_events
		 (id, task_id, event_type, from_status, to_status, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID,
		e.TaskID,
		e.EventType,
		nilIfEmpty(string(e.FromStatus)),
		nilIfEmpty(string(e.ToStatus)),
		nilIfEmpty(e.Note),
		e.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to append task event", err)
	}
	return nil
}

// ListEvents retrieves a task's audit trail, oldest first.
func (r *TaskRepository) ListEvents(ctx context.Context, taskID string) ([]*types.TaskEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, task_id, event_type, from_status, to_status, note, created_at
		 FROM task_events
		 WHERE task_id = $1
		 ORDER BY created_at ASC`,
		taskID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list task events", err)
	}
	defer rows.Close()

	var events []*types.TaskEvent
	for rows.Next() {
		var (
			e          types.TaskEvent
			fromStatus *string
			toStatus   *string
			note       *string
		)
		if scanErr := rows.Scan(&e.ID, &e.TaskID, &e.EventType, &fromStatus, &toStatus, &note, &e.CreatedAt); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan task event", scanErr)
		}
		if fromStatus != nil {
			e.FromStatus = types.TaskStatus(*fromStatus)
		}
		if toStatus != nil {
			e.ToStatus = types.TaskStatus(*toStatus)
		}
		if note != nil {
			e.Note = *note
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating task events", err)
	}
	return events, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*types.FarmerTask, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query tasks", err)
	}
	defer rows.Close()

	var tasks []*types.FarmerTask
	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan task row", scanErr)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating task rows", err)
	}
	return tasks, nil
}

// scanTask reads one farmer_tasks row in taskColumns order. Works for both
// pgx.Row and pgx.Rows.
func scanTask(row pgx.Row) (*types.FarmerTask, error) {
	var (
		t               types.FarmerTask
		category        string
		priority        string
		status          string
		completionNotes *string
		zoneID          *string
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&category,
		&priority,
		&status,
		&t.FieldID,
		&t.CreatedAt,
		&t.DueDate,
		&t.EstimatedMins,
		&t.CostEstimate,
		&t.AutoGenerated,
		&t.AIConfidence,
		&completionNotes,
		&t.CompletedAt,
		&zoneID,
		&t.AreaHa,
		&t.Coordinates,
		&t.EquipmentNeeded,
		&t.MaterialsNeeded,
		&t.WeatherDependent,
		&t.RiskFactors,
	)
	if err != nil {
		return nil, err
	}
	t.Category = types.TaskCategory(category)
	t.Priority = types.TaskPriority(priority)
	t.Status = types.TaskStatus(status)
	if completionNotes != nil {
		t.CompletionNotes = *completionNotes
	}
	if zoneID != nil {
		t.ZoneID = *zoneID
	}
	return &t, nil
}

func statusStrings(values []types.TaskStatus) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func categoryStrings(values []types.TaskCategory) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func priorityStrings(values []types.TaskPriority) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
