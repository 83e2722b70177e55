// Package tasks implements the task lifecycle layer: creation from
// recommendation actions, weather forecasts, and growth-stage templates;
// status transitions along the task state machine; overdue reconciliation;
// and farmer-facing queries and summaries.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/types"
)

// Conversion constants for recommendation-derived tasks.
const (
	actionTaskDurationMins = 90
	actionTaskConfidence   = 0.88

	timingImmediateDays   = 1
	timingWithinWeekDays  = 3
	timingWithinMonthDays = 14
	timingFallbackDays    = 3
)

// categoryForAction maps a recommendation action type to a task category.
// Unknown action types land in monitoring rather than failing: a task the
// farmer has to triage beats a dropped recommendation.
func categoryForAction(at types.ActionType) types.TaskCategory {
	switch at {
	case types.ActionIrrigation:
		return types.CategoryIrrigation
	case types.ActionFertilization:
		return types.CategoryFertilization
	case types.ActionPestManagement:
		return types.CategoryPestControl
	default:
		return types.CategoryMonitoring
	}
}

// priorityForAction widens the three-level action priority into the task
// priority scale. Unknown values default to medium.
func priorityForAction(p types.ActionPriority) types.TaskPriority {
	switch p {
	case types.PriorityLow:
		return types.TaskPriorityLow
	case types.PriorityMedium:
		return types.TaskPriorityMedium
	case types.PriorityHigh:
		return types.TaskPriorityHigh
	default:
		return types.TaskPriorityMedium
	}
}

// dueDaysForTiming converts an action's timing into a due-date offset.
func dueDaysForTiming(t types.Timing) int {
	switch t {
	case types.TimingImmediate:
		return timingImmediateDays
	case types.TimingWithinWeek:
		return timingWithinWeekDays
	case types.TimingWithinMonth:
		return timingWithinMonthDays
	default:
		return timingFallbackDays
	}
}

// equipmentForAction lists the equipment implied by an action type.
func equipmentForAction(at types.ActionType) types.StringList {
	switch at {
	case types.ActionIrrigation:
		return types.StringList{"irrigation_system", "water_pump"}
	case types.ActionFertilization:
		return types.StringList{"spreader", "tractor"}
	case types.ActionPestManagement:
		return types.StringList{"sprayer", "protective_equipment"}
	default:
		return nil
	}
}

// materialsForAction infers materials from the action type and its
// description text. Fertilization actions name their nutrient in the
// description; pest actions distinguish fungicide sprays from general
// pesticide treatment.
func materialsForAction(a types.RecommendationAction) types.StringList {
	var materials types.StringList

	switch a.ActionType {
	case types.ActionFertilization:
		desc := strings.ToLower(a.Description)
		for _, n := range []types.Nutrient{
			types.NutrientNitrogen,
			types.NutrientPhosphorus,
			types.NutrientPotassium,
			types.NutrientMagnesium,
			types.NutrientCalcium,
		} {
			if strings.Contains(desc, string(n)) {
				materials = append(materials, string(n)+"_fertilizer")
			}
		}
	case types.ActionPestManagement:
		if strings.Contains(strings.ToLower(a.Description), "fungicide") {
			materials = append(materials, "fungicide")
		} else {
			materials = append(materials, "pesticide")
		}
	}

	return materials
}

// taskFromAction converts one recommendation action in one zone into a
// pending task. Zone identity and area are carried over so the task stays
// actionable without the originating recommendation document.
func taskFromAction(fieldID string, zone types.ZoneRecommendation, a types.RecommendationAction, now time.Time) *types.FarmerTask {
	area := zone.AreaHa
	return &types.FarmerTask{
		ID:    uuid.NewString(),
		Title: a.Description,
		Description: fmt.Sprintf("AI-generated task for Zone %d: %s",
			zone.ZoneID, a.Description),
		Category:        categoryForAction(a.ActionType),
		Priority:        priorityForAction(a.Priority),
		Status:          types.TaskPending,
		FieldID:         fieldID,
		ZoneID:          fmt.Sprintf("%d", zone.ZoneID),
		AreaHa:          &area,
		CreatedAt:       now,
		DueDate:         now.AddDate(0, 0, dueDaysForTiming(a.Timing)),
		EstimatedMins:   actionTaskDurationMins,
		CostEstimate:    a.Cost(),
		AutoGenerated:   true,
		AIConfidence:    actionTaskConfidence,
		EquipmentNeeded: equipmentForAction(a.ActionType),
		MaterialsNeeded: materialsForAction(a),
	}
}
