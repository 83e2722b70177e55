package tasks

import (
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/types"
)

// Growth-stage task generation constants.
const (
	stageTaskDueDays    = 2
	stageTaskConfidence = 0.85

	// healthEscalationBelow is the field health score under which template
	// priorities are escalated one level.
	healthEscalationBelow = 70.0
)

type stageTaskTemplate struct {
	title        string
	description  string
	category     types.TaskCategory
	priority     types.TaskPriority
	durationMins int
	cost         float64
}

// stageTaskTemplates is the fixed per-stage task list. Stages without
// routine work (Planting) have no entry.
var stageTaskTemplates = map[types.GrowthStage][]stageTaskTemplate{
	types.StageEmergence: {
		{
			title:        "Monitor Emergence Rate",
			description:  "Check plant emergence percentage and identify any gaps in planting.",
			category:     types.CategoryMonitoring,
			priority:     types.TaskPriorityMedium,
			durationMins: 60,
		},
	},
	types.StageVegetativeGrowth: {
		{
			title:        "Optimize Irrigation Schedule",
			description:  "Adjust irrigation frequency for optimal vegetative growth.",
			category:     types.CategoryIrrigation,
			priority:     types.TaskPriorityHigh,
			durationMins: 90,
			cost:         200.0,
		},
		{
			title:        "Apply Nitrogen Fertilizer",
			description:  "Apply nitrogen fertilizer to support leaf and stem growth.",
			category:     types.CategoryFertilization,
			priority:     types.TaskPriorityHigh,
			durationMins: 120,
			cost:         800.0,
		},
	},
	types.StageTuberInitiation: {
		{
			title:        "Reduce Nitrogen, Increase Potassium",
			description:  "Adjust fertilizer ratio to promote tuber development.",
			category:     types.CategoryFertilization,
			priority:     types.TaskPriorityHigh,
			durationMins: 90,
			cost:         600.0,
		},
	},
	types.StageTuberBulking: {
		{
			title:        "Maintain Consistent Moisture",
			description:  "Ensure consistent soil moisture for optimal tuber sizing.",
			category:     types.CategoryIrrigation,
			priority:     types.TaskPriorityUrgent,
			durationMins: 45,
			cost:         150.0,
		},
	},
	types.StageMaturation: {
		{
			title:        "Plan Harvest Schedule",
			description:  "Prepare harvest plan and check equipment readiness.",
			category:     types.CategoryHarvesting,
			priority:     types.TaskPriorityHigh,
			durationMins: 120,
		},
	},
}

// escalatePriority bumps a template priority one level for struggling
// fields. Low tasks stay low; urgent has nowhere to go.
func escalatePriority(p types.TaskPriority) types.TaskPriority {
	switch p {
	case types.TaskPriorityMedium:
		return types.TaskPriorityHigh
	case types.TaskPriorityHigh:
		return types.TaskPriorityUrgent
	default:
		return p
	}
}

// stageTasks instantiates the template list for a growth stage. Stages with
// no templates return nothing.
func stageTasks(fieldID string, stage types.GrowthStage, fieldHealth float64, now time.Time) []*types.FarmerTask {
	templates, ok := stageTaskTemplates[stage]
	if !ok {
		return nil
	}

	created := make([]*types.FarmerTask, 0, len(templates))
	for _, tpl := range templates {
		priority := tpl.priority
		if fieldHealth < healthEscalationBelow {
			priority = escalatePriority(priority)
		}
		created = append(created, &types.FarmerTask{
			ID:            uuid.NewString(),
			Title:         tpl.title,
			Description:   tpl.description,
			Category:      tpl.category,
			Priority:      priority,
			Status:        types.TaskPending,
			FieldID:       fieldID,
			CreatedAt:     now,
			DueDate:       now.AddDate(0, 0, stageTaskDueDays),
			EstimatedMins: tpl.durationMins,
			CostEstimate:  tpl.cost,
			AutoGenerated: true,
			AIConfidence:  stageTaskConfidence,
		})
	}
	return created
}
