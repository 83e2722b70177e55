package alerts

import (
	"fmt"
	"time"

	"cropwatch/internal/types"
)

// Message builders for each alert kind. Bodies are farmer-facing; keep the
// wording actionable and the numbers rounded.

func overdueMessage(t *types.FarmerTask) types.AlertMessage {
	return types.AlertMessage{
		Title: "Overdue Task: " + t.Title,
		Body: fmt.Sprintf(
			"Task %q was due on %s. Please complete this task as soon as possible.",
			t.Title, t.DueDate.Format("2006-01-02 15:04")),
		Priority: types.TaskPriorityHigh,
		TaskID:   t.ID,
		FieldID:  t.FieldID,
		Actions: []types.AlertAction{
			{Text: "Mark Complete", Action: "complete_task"},
			{Text: "Extend Deadline", Action: "extend_deadline"},
			{Text: "View Details", Action: "view_task"},
		},
	}
}

func urgentMessage(t *types.FarmerTask, now time.Time) types.AlertMessage {
	hoursRemaining := int(t.DueDate.Sub(now).Hours())
	return types.AlertMessage{
		Title: "Urgent Task: " + t.Title,
		Body: fmt.Sprintf(
			"Urgent task due in %d hours. Cost impact: %.0f INR",
			hoursRemaining, t.CostEstimate),
		Priority:        types.TaskPriorityUrgent,
		TaskID:          t.ID,
		FieldID:         t.FieldID,
		EquipmentNeeded: t.EquipmentNeeded,
		MaterialsNeeded: t.MaterialsNeeded,
		Actions: []types.AlertAction{
			{Text: "Start Now", Action: "start_task"},
			{Text: "Get Resources", Action: "view_resources"},
			{Text: "Postpone", Action: "postpone_task"},
		},
	}
}

func reminderMessage(t *types.FarmerTask, hoursBefore int) types.AlertMessage {
	timeText := fmt.Sprintf("%d hour(s)", hoursBefore)
	if hoursBefore >= 24 {
		timeText = fmt.Sprintf("%d day(s)", hoursBefore/24)
	}
	return types.AlertMessage{
		Title: "Reminder: " + t.Title,
		Body: fmt.Sprintf(
			"Task %q is due in %s. Duration: %d minutes.",
			t.Title, timeText, t.EstimatedMins),
		Priority: types.TaskPriorityMedium,
		TaskID:   t.ID,
		FieldID:  t.FieldID,
		ZoneID:   t.ZoneID,
		Actions: []types.AlertAction{
			{Text: "View Task", Action: "view_task"},
			{Text: "Snooze 1hr", Action: "snooze_1h"},
			{Text: "Mark Complete", Action: "complete_task"},
		},
	}
}

func weatherSuitableMessage(t *types.FarmerTask, w types.WeatherSnapshot) types.AlertMessage {
	return types.AlertMessage{
		Title: "Good Weather for: " + t.Title,
		Body: fmt.Sprintf(
			"Weather conditions are now suitable for %q. Temperature: %.0f°C, Wind: %.0f km/h, Rain chance: %.0f%%",
			t.Title, w.Temperature, w.WindSpeed, w.PrecipProb),
		Priority: types.TaskPriorityMedium,
		TaskID:   t.ID,
		FieldID:  t.FieldID,
		Actions: []types.AlertAction{
			{Text: "Start Task", Action: "start_task"},
			{Text: "Check Details", Action: "view_task"},
			{Text: "Schedule Later", Action: "schedule_later"},
		},
	}
}

func weatherWarningMessage(t *types.FarmerTask, w types.WeatherSnapshot) types.AlertMessage {
	return types.AlertMessage{
		Title: "Weather Warning: " + t.Title,
		Body: fmt.Sprintf(
			"Weather conditions are not suitable for %q. Consider postponing. Rain chance: %.0f%%, Wind: %.0f km/h",
			t.Title, w.PrecipProb, w.WindSpeed),
		Priority: types.TaskPriorityMedium,
		TaskID:   t.ID,
		FieldID:  t.FieldID,
		Actions: []types.AlertAction{
			{Text: "Postpone Task", Action: "postpone_task"},
			{Text: "Continue Anyway", Action: "start_task"},
			{Text: "Check Forecast", Action: "view_weather"},
		},
	}
}
