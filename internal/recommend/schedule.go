package recommend

import (
	"sort"
	"time"

	"cropwatch/internal/types"
)

// Day offsets applied when turning an action's timing into a concrete
// schedule date.
const (
	scheduleImmediateDays   = 0
	scheduleWithinWeekDays  = 3
	scheduleWithinMonthDays = 14
	scheduleDefaultDays     = 7
)

// BuildSchedule flattens a field recommendation into a date-ordered action
// plan for the next daysAhead days. Dates are assigned deterministically
// from each action's timing; actions landing beyond the horizon are
// excluded.
func BuildSchedule(rec *types.FieldRecommendation, base time.Time, daysAhead int) []types.ScheduledAction {
	horizon := base.AddDate(0, 0, daysAhead)
	var schedule []types.ScheduledAction

	for _, zone := range rec.Zones {
		for _, action := range zone.Actions {
			date := base.AddDate(0, 0, scheduleOffsetDays(action.Timing))
			if date.After(horizon) {
				continue
			}
			schedule = append(schedule, types.ScheduledAction{
				Date:            date,
				ZoneID:          zone.ZoneID,
				ActionType:      action.ActionType,
				Priority:        action.Priority,
				Description:     action.Description,
				ApplicationRate: action.ApplicationRate,
				ApplicationUnit: action.ApplicationUnit,
				EstimatedCost:   action.Cost(),
				AreaHa:          zone.AreaHa,
			})
		}
	}

	sort.SliceStable(schedule, func(i, j int) bool {
		if !schedule[i].Date.Equal(schedule[j].Date) {
			return schedule[i].Date.Before(schedule[j].Date)
		}
		return priorityRank(schedule[i].Priority) > priorityRank(schedule[j].Priority)
	})

	return schedule
}

func scheduleOffsetDays(t types.Timing) int {
	switch t {
	case types.TimingImmediate:
		return scheduleImmediateDays
	case types.TimingWithinWeek:
		return scheduleWithinWeekDays
	case types.TimingWithinMonth:
		return scheduleWithinMonthDays
	default:
		return scheduleDefaultDays
	}
}

func priorityRank(p types.ActionPriority) int {
	switch p {
	case types.PriorityHigh:
		return 3
	case types.PriorityMedium:
		return 2
	case types.PriorityLow:
		return 1
	default:
		return 0
	}
}
