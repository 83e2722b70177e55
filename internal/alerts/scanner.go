// Package alerts implements the alert scanner: a periodic sweep over active
// tasks that fires overdue, urgent, reminder, and weather-suitability
// notifications, deduplicated per (task, alert kind) through an atomic
// claim on the dispatch log.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"cropwatch/internal/types"
)

// Claim semantics: winning the (task, kind) row happens before dispatch, so
// two concurrent sweeps can never both send the same alert. A claim whose
// dispatch then fails is not retried; the alert kinds here all re-fire at
// the task's next lifecycle change or not at all, and a lost alert is
// cheaper than a duplicate one.

// reminderWindow is how long after a reminder's trigger time the scanner
// will still fire it. A sweep cadence longer than this misses reminders.
const reminderWindow = 30 * time.Minute

// DefaultReminderOffsetsHours fire reminders one day, four hours, and one
// hour before the due date.
var DefaultReminderOffsetsHours = []int{24, 4, 1}

// TaskLister yields the tasks to scan, satisfied by tasks.Manager.
type TaskLister interface {
	TasksForFarmer(ctx context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error)
}

// Claimer atomically claims one (task, alert kind) dispatch, satisfied by
// db.AlertRepository.
type Claimer interface {
	Claim(ctx context.Context, taskID string, kind types.AlertKind, recipient string, now time.Time) (bool, error)
}

// Dispatcher fans a claimed alert out to the delivery channels. Dispatch is
// best-effort; channel failures are the dispatcher's to log.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind types.AlertKind, msg types.AlertMessage)
}

// SnapshotProvider yields current weather conditions for the suitability
// checks.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, fieldID string) (types.WeatherSnapshot, error)
}

// ScanCounts summarizes one sweep.
type ScanCounts struct {
	Overdue   int `json:"overdue"`
	Urgent    int `json:"urgent"`
	Reminders int `json:"reminders"`
	Weather   int `json:"weather"`
	Total     int `json:"total"`
}

// Scanner runs the alert sweep.
type Scanner struct {
	tasks      TaskLister
	claims     Claimer
	dispatcher Dispatcher
	weather    SnapshotProvider
	dashboard  *Dashboard
	logger     *slog.Logger
	now        func() time.Time

	reminderOffsets []int
	recipient       string
}

// ScannerConfig holds the dependencies for creating a Scanner.
// ReminderOffsetsHours defaults to DefaultReminderOffsetsHours, Logger to
// slog.Default, Now to time.Now.
type ScannerConfig struct {
	Tasks      TaskLister
	Claims     Claimer
	Dispatcher Dispatcher
	Weather    SnapshotProvider
	Dashboard  *Dashboard

	ReminderOffsetsHours []int
	Recipient            string
	Logger               *slog.Logger
	Now                  func() time.Time
}

// NewScanner creates an alert Scanner.
func NewScanner(cfg ScannerConfig) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	offsets := cfg.ReminderOffsetsHours
	if len(offsets) == 0 {
		offsets = DefaultReminderOffsetsHours
	}
	return &Scanner{
		tasks:           cfg.Tasks,
		claims:          cfg.Claims,
		dispatcher:      cfg.Dispatcher,
		weather:         cfg.Weather,
		dashboard:       cfg.Dashboard,
		logger:          logger,
		now:             now,
		reminderOffsets: offsets,
		recipient:       cfg.Recipient,
	}
}

// Scan sweeps every active task in the field set once. Per task, exactly
// one of the overdue/urgent/reminder branches applies; the weather check
// runs independently for weather-dependent tasks. Each fired alert is
// claim-gated so a re-scan never duplicates a send.
func (s *Scanner) Scan(ctx context.Context, fieldIDs []string) (ScanCounts, error) {
	var counts ScanCounts

	active, err := s.tasks.TasksForFarmer(ctx, types.TaskFilter{
		FieldIDs: fieldIDs,
		Statuses: []types.TaskStatus{types.TaskPending, types.TaskInProgress, types.TaskOverdue},
	})
	if err != nil {
		return counts, err
	}

	now := s.now().UTC()
	snapshots := make(map[string]types.WeatherSnapshot)

	for _, task := range active {
		switch {
		case task.DueDate.Before(now):
			if s.fire(ctx, task, types.AlertOverdue, overdueMessage(task), now) {
				counts.Overdue++
			}
		case task.Priority == types.TaskPriorityUrgent:
			if s.fire(ctx, task, types.AlertUrgent, urgentMessage(task, now), now) {
				counts.Urgent++
			}
		default:
			counts.Reminders += s.checkReminders(ctx, task, now)
		}

		if task.WeatherDependent {
			counts.Weather += s.checkWeather(ctx, task, now, snapshots)
		}
	}

	counts.Total = counts.Overdue + counts.Urgent + counts.Reminders + counts.Weather
	s.logger.InfoContext(ctx, "alert sweep complete",
		"fields", len(fieldIDs),
		"tasks_scanned", len(active),
		"alerts_sent", counts.Total,
	)
	return counts, nil
}

// checkReminders fires any reminder whose trigger window contains now.
// Each offset has its own claim key, so every offset fires at most once
// over the task's life.
func (s *Scanner) checkReminders(ctx context.Context, task *types.FarmerTask, now time.Time) int {
	fired := 0
	for _, hoursBefore := range s.reminderOffsets {
		triggerAt := task.DueDate.Add(-time.Duration(hoursBefore) * time.Hour)
		if now.Before(triggerAt) || !now.Before(triggerAt.Add(reminderWindow)) {
			continue
		}
		if s.fire(ctx, task, types.ReminderKind(hoursBefore), reminderMessage(task, hoursBefore), now) {
			fired++
		}
	}
	return fired
}

// checkWeather evaluates the category's suitability predicates against the
// field's current conditions and fires at most one alert. Snapshots are
// fetched once per field per sweep.
func (s *Scanner) checkWeather(ctx context.Context, task *types.FarmerTask, now time.Time, snapshots map[string]types.WeatherSnapshot) int {
	snapshot, ok := snapshots[task.FieldID]
	if !ok {
		var err error
		snapshot, err = s.weather.Snapshot(ctx, task.FieldID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to fetch weather snapshot",
				"field_id", task.FieldID,
				"error", err,
			)
			return 0
		}
		snapshots[task.FieldID] = snapshot
	}

	switch {
	case WeatherSuitable(task.Category, snapshot):
		if s.fire(ctx, task, types.AlertWeatherSuitable, weatherSuitableMessage(task, snapshot), now) {
			return 1
		}
	case WeatherUnsuitable(task.Category, snapshot):
		if s.fire(ctx, task, types.AlertWeatherWarning, weatherWarningMessage(task, snapshot), now) {
			return 1
		}
	}
	return 0
}

// fire claims the (task, kind) pair and, on winning it, dispatches the
// message and records it on the dashboard. Returns whether a send happened.
func (s *Scanner) fire(ctx context.Context, task *types.FarmerTask, kind types.AlertKind, msg types.AlertMessage, now time.Time) bool {
	claimed, err := s.claims.Claim(ctx, task.ID, kind, s.recipient, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to claim alert",
			"task_id", task.ID,
			"alert_kind", kind,
			"error", err,
		)
		return false
	}
	if !claimed {
		return false
	}

	s.dispatcher.Dispatch(ctx, kind, msg)
	if s.dashboard != nil {
		s.dashboard.Record(kind, msg, now)
	}
	return true
}
