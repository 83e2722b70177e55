package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/agronomy"
	"cropwatch/internal/types"
)

// TaskStore is the persistence dependency of the Manager, satisfied by
// db.TaskRepository.
type TaskStore interface {
	Create(ctx context.Context, t *types.FarmerTask) error
	GetByID(ctx context.Context, id string) (*types.FarmerTask, error)
	List(ctx context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error)
	ListOverdue(ctx context.Context, fieldIDs []string, now time.Time) ([]*types.FarmerTask, error)
	ListUpcoming(ctx context.Context, fieldIDs []string, now time.Time, days int) ([]*types.FarmerTask, error)
	UpdateStatus(ctx context.Context, id string, status types.TaskStatus, notes string, completedAt *time.Time) error
	MarkOverdue(ctx context.Context, now time.Time) ([]string, error)
	AppendEvent(ctx context.Context, e *types.TaskEvent) error
	ListEvents(ctx context.Context, taskID string) ([]*types.TaskEvent, error)
}

// validTransitions is the task state machine. Overdue is reached only
// through reconciliation, never through UpdateStatus, so it appears as a
// source here but never as a requested target.
var validTransitions = map[types.TaskStatus]map[types.TaskStatus]bool{
	types.TaskPending: {
		types.TaskInProgress: true,
		types.TaskCancelled:  true,
	},
	types.TaskInProgress: {
		types.TaskCompleted: true,
		types.TaskCancelled: true,
	},
	types.TaskOverdue: {
		types.TaskInProgress: true,
		types.TaskCompleted:  true,
		types.TaskCancelled:  true,
	},
}

// Manager owns the task lifecycle. All time arithmetic goes through the
// injected clock so transitions are testable.
type Manager struct {
	store  TaskStore
	logger *slog.Logger
	now    func() time.Time
}

// ManagerConfig holds the dependencies for creating a Manager. Logger
// defaults to slog.Default and Now to time.Now.
type ManagerConfig struct {
	Store  TaskStore
	Logger *slog.Logger
	Now    func() time.Time
}

// NewManager creates a task Manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{store: cfg.Store, logger: logger, now: now}
}

// IsOverdue reports whether a task's due date has passed while the task is
// still in a non-terminal state. Pure; read paths use this instead of
// mutating status.
func IsOverdue(t *types.FarmerTask, now time.Time) bool {
	return !t.Status.Terminal() && t.DueDate.Before(now)
}

// CreateTask validates and persists a caller-constructed task, assigning an
// ID when absent.
func (m *Manager) CreateTask(ctx context.Context, t *types.FarmerTask) (string, error) {
	now := m.now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.Status == "" {
		t.Status = types.TaskPending
	}

	if err := validateTask(t); err != nil {
		return "", err
	}
	if err := m.store.Create(ctx, t); err != nil {
		return "", err
	}
	m.recordEvent(ctx, t.ID, types.TaskEventCreated, "", t.Status, "")

	m.logger.InfoContext(ctx, "created task",
		"task_id", t.ID,
		"field_id", t.FieldID,
		"category", t.Category,
		"priority", t.Priority,
	)
	return t.ID, nil
}

// TasksFromRecommendation converts every action of every zone in a field
// recommendation into a persisted pending task, returning the created IDs
// in zone-then-action order.
func (m *Manager) TasksFromRecommendation(ctx context.Context, fieldID string, rec *types.FieldRecommendation) ([]string, error) {
	if rec == nil {
		return nil, nil
	}

	now := m.now().UTC()
	var built []*types.FarmerTask
	for _, zone := range rec.Zones {
		for _, action := range zone.Actions {
			built = append(built, taskFromAction(fieldID, zone, action, now))
		}
	}
	return m.createAll(ctx, built)
}

// TasksFromWeather creates weather-alert tasks from forecast thresholds.
// Each threshold check is independent; one forecast can create several
// tasks.
func (m *Manager) TasksFromWeather(ctx context.Context, fieldID string, forecast types.WeatherForecast) ([]string, error) {
	return m.createAll(ctx, weatherAlertTasks(fieldID, forecast, m.now().UTC()))
}

// TasksFromGrowthStage instantiates the stage's task templates, escalating
// priority when field health is poor. Unrecognized stage labels create
// nothing.
func (m *Manager) TasksFromGrowthStage(ctx context.Context, fieldID string, stageLabel string, fieldHealth float64) ([]string, error) {
	stage, ok := agronomy.ParseGrowthStage(stageLabel)
	if !ok {
		m.logger.WarnContext(ctx, "skipping stage task generation for unknown stage",
			"field_id", fieldID,
			"growth_stage", stageLabel,
		)
		return nil, nil
	}
	return m.createAll(ctx, stageTasks(fieldID, stage, fieldHealth, m.now().UTC()))
}

// UpdateStatus transitions a task along the state machine. Completing a
// task stamps completed_at and attaches optional notes; notes are ignored
// on other transitions. Overdue cannot be requested here.
func (m *Manager) UpdateStatus(ctx context.Context, taskID string, next types.TaskStatus, notes string) error {
	task, err := m.store.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if task.Status.Terminal() {
		return types.NewAppErrorWithDetails(types.ErrCodeConflictTerminal,
			"task is in a terminal state", nil,
			map[string]any{"status": task.Status})
	}
	if next == types.TaskOverdue {
		return types.NewAppError(types.ErrCodeConflictTransition,
			"overdue is a time-triggered transition", nil)
	}
	if !validTransitions[task.Status][next] {
		return types.NewAppErrorWithDetails(types.ErrCodeConflictTransition,
			"invalid status transition", nil,
			map[string]any{"from": task.Status, "to": next})
	}

	var completedAt *time.Time
	completionNotes := ""
	if next == types.TaskCompleted {
		now := m.now().UTC()
		completedAt = &now
		completionNotes = notes
	}

	if err := m.store.UpdateStatus(ctx, taskID, next, completionNotes, completedAt); err != nil {
		return err
	}
	m.recordEvent(ctx, taskID, types.TaskEventStatusChanged, task.Status, next, completionNotes)

	m.logger.InfoContext(ctx, "updated task status",
		"task_id", taskID,
		"from", task.Status,
		"to", next,
	)
	return nil
}

// ReconcileOverdue transitions every active task with a passed due date to
// overdue and returns the affected IDs. Invoked by the scheduler sweep and
// by the overdue query path; running it twice is harmless.
func (m *Manager) ReconcileOverdue(ctx context.Context) ([]string, error) {
	ids, err := m.store.MarkOverdue(ctx, m.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		m.recordEvent(ctx, id, types.TaskEventMarkedOverdue, "", types.TaskOverdue, "")
	}
	if len(ids) > 0 {
		m.logger.InfoContext(ctx, "marked tasks overdue", "count", len(ids))
	}
	return ids, nil
}

// Task retrieves a single task by ID.
func (m *Manager) Task(ctx context.Context, taskID string) (*types.FarmerTask, error) {
	return m.store.GetByID(ctx, taskID)
}

// TasksForFarmer retrieves tasks matching the filter, ordered by due date
// then priority.
func (m *Manager) TasksForFarmer(ctx context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error) {
	return m.store.List(ctx, filter)
}

// OverdueTasks reconciles and then returns the overdue tasks for a field
// set. Re-querying repeats the reconciliation but cannot double-apply it.
func (m *Manager) OverdueTasks(ctx context.Context, fieldIDs []string) ([]*types.FarmerTask, error) {
	if _, err := m.ReconcileOverdue(ctx); err != nil {
		return nil, err
	}
	return m.store.ListOverdue(ctx, fieldIDs, m.now().UTC())
}

// UpcomingTasks returns active tasks due within the next daysAhead days.
func (m *Manager) UpcomingTasks(ctx context.Context, fieldIDs []string, daysAhead int) ([]*types.FarmerTask, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	return m.store.ListUpcoming(ctx, fieldIDs, m.now().UTC(), daysAhead)
}

// TaskHistory returns a task's audit trail, oldest event first.
func (m *Manager) TaskHistory(ctx context.Context, taskID string) ([]*types.TaskEvent, error) {
	if _, err := m.store.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return m.store.ListEvents(ctx, taskID)
}

// Summary computes the dashboard rollup for a field set. Uncompleted cost
// counts every non-completed task, cancelled included, matching the
// dashboard's "money still on the table" reading.
func (m *Manager) Summary(ctx context.Context, fieldIDs []string) (*types.TaskSummary, error) {
	// Reconcile first so the status counts below see up-to-date overdue
	// states.
	overdue, err := m.OverdueTasks(ctx, fieldIDs)
	if err != nil {
		return nil, err
	}
	all, err := m.store.List(ctx, types.TaskFilter{FieldIDs: fieldIDs})
	if err != nil {
		return nil, err
	}
	upcoming, err := m.UpcomingTasks(ctx, fieldIDs, 3)
	if err != nil {
		return nil, err
	}

	s := &types.TaskSummary{
		TotalTasks:        len(all),
		Overdue:           len(overdue),
		UpcomingThreeDays: len(upcoming),
		Categories:        make(map[types.TaskCategory]types.CategoryStats),
	}

	for _, t := range all {
		switch t.Status {
		case types.TaskPending:
			s.Pending++
		case types.TaskInProgress:
			s.InProgress++
		case types.TaskCompleted:
			s.Completed++
		}
		if t.Priority == types.TaskPriorityUrgent &&
			(t.Status == types.TaskPending || t.Status == types.TaskInProgress) {
			s.UrgentTasks++
		}
		if t.AutoGenerated {
			s.AutoGenerated++
		}
		if t.Status != types.TaskCompleted {
			s.TotalEstimatedCost += t.CostEstimate
		}

		stats := s.Categories[t.Category]
		stats.Count++
		if t.Status == types.TaskPending {
			stats.Pending++
		} else if t.Status == types.TaskCompleted {
			stats.Completed++
		}
		s.Categories[t.Category] = stats
	}

	return s, nil
}

// createAll persists a batch of generated tasks, collecting the IDs of the
// ones that made it.
func (m *Manager) createAll(ctx context.Context, built []*types.FarmerTask) ([]string, error) {
	var ids []string
	for _, t := range built {
		if err := m.store.Create(ctx, t); err != nil {
			return ids, err
		}
		m.recordEvent(ctx, t.ID, types.TaskEventCreated, "", t.Status, "")
		ids = append(ids, t.ID)
	}
	if len(ids) > 0 {
		m.logger.InfoContext(ctx, "created generated tasks", "count", len(ids))
	}
	return ids, nil
}

// recordEvent appends an audit row. Audit failures are logged, not
// propagated: the task mutation already happened.
func (m *Manager) recordEvent(ctx context.Context, taskID, eventType string, from, to types.TaskStatus, note string) {
	err := m.store.AppendEvent(ctx, &types.TaskEvent{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		EventType:  eventType,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  m.now().UTC(),
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to record task event",
			"task_id", taskID,
			"event_type", eventType,
			"error", err,
		)
	}
}

// validateTask enforces the creation invariants.
func validateTask(t *types.FarmerTask) error {
	if t.Title == "" {
		return types.NewAppError(types.ErrCodeValidationMissingField, "title is required", nil)
	}
	if t.FieldID == "" {
		return types.NewAppError(types.ErrCodeValidationMissingField, "field_id is required", nil)
	}
	if t.DueDate.Before(t.CreatedAt) {
		return types.NewAppError(types.ErrCodeValidationDueDate, "due date precedes creation time", nil)
	}
	if t.Priority.Rank() == 0 {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidEnum,
			"unknown task priority", nil, map[string]any{"priority": t.Priority})
	}
	if !validCategory(t.Category) {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidEnum,
			"unknown task category", nil, map[string]any{"category": t.Category})
	}
	if t.AIConfidence < 0 || t.AIConfidence > 1 {
		return types.NewAppError(types.ErrCodeValidationInvalidEnum, "ai_confidence must be within [0,1]", nil)
	}
	if t.AreaHa != nil && *t.AreaHa <= 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidArea, "area_hectares must be positive", nil)
	}
	return nil
}

func validCategory(c types.TaskCategory) bool {
	switch c {
	case types.CategoryIrrigation, types.CategoryFertilization, types.CategoryPestControl,
		types.CategoryHarvesting, types.CategoryPlanting, types.CategoryMonitoring,
		types.CategoryEquipment, types.CategoryWeatherAlert, types.CategoryMarket,
		types.CategoryCompliance:
		return true
	}
	return false
}
