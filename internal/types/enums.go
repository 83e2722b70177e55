package types

import "fmt"

// GrowthStage identifies a phase of the potato crop lifecycle.
// Stages are ordered; each has a fixed requirement row in the agronomy
// reference tables.
type GrowthStage string

const (
	StagePlanting         GrowthStage = "Planting"
	StageEmergence        GrowthStage = "Emergence"
	StageVegetativeGrowth GrowthStage = "Vegetative_Growth"
	StageTuberInitiation  GrowthStage = "Tuber_Initiation"
	StageTuberBulking     GrowthStage = "Tuber_Bulking"
	StageMaturation       GrowthStage = "Maturation"
)

// AllGrowthStages lists the lifecycle stages in order.
var AllGrowthStages = []GrowthStage{
	StagePlanting,
	StageEmergence,
	StageVegetativeGrowth,
	StageTuberInitiation,
	StageTuberBulking,
	StageMaturation,
}

// Nutrient identifies a soil nutrient tracked by the advisory core.
type Nutrient string

const (
	NutrientNitrogen   Nutrient = "nitrogen"
	NutrientPhosphorus Nutrient = "phosphorus"
	NutrientPotassium  Nutrient = "potassium"
	NutrientMagnesium  Nutrient = "magnesium"
	NutrientCalcium    Nutrient = "calcium"
)

// AssessedNutrients is the subset of nutrients evaluated during zone
// assessment. Magnesium and calcium are configured in the threshold tables
// but only consulted when a stage marks them critical.
var AssessedNutrients = []Nutrient{
	NutrientNitrogen,
	NutrientPhosphorus,
	NutrientPotassium,
}

// HealthStatus is the qualitative zone health derived from vegetation indices.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
)

// NutrientStatus buckets a measured nutrient level against its thresholds.
// Buckets are half-open and ordered: severe_deficiency < deficiency <
// marginal < sufficient, with excess above the upper breakpoint.
type NutrientStatus string

const (
	NutrientSevereDeficiency NutrientStatus = "severe_deficiency"
	NutrientDeficiency       NutrientStatus = "deficiency"
	NutrientMarginal         NutrientStatus = "marginal"
	NutrientSufficient       NutrientStatus = "sufficient"
	NutrientExcess           NutrientStatus = "excess"
)

// Deficient reports whether the status calls for corrective fertilization.
func (s NutrientStatus) Deficient() bool {
	return s == NutrientSevereDeficiency || s == NutrientDeficiency
}

// ActionType identifies the kind of recommended field operation.
type ActionType string

const (
	ActionIrrigation     ActionType = "irrigation"
	ActionFertilization  ActionType = "fertilization"
	ActionPestManagement ActionType = "pest_management"
	ActionHarvesting     ActionType = "harvesting"
)

// ActionPriority ranks a recommendation action.
type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
)

// Timing expresses how soon a recommended action should be executed.
type Timing string

const (
	TimingImmediate   Timing = "immediate"
	TimingWithinWeek  Timing = "within_week"
	TimingWithinMonth Timing = "within_month"
)

// TaskCategory classifies a farmer task for filtering and summaries.
type TaskCategory string

const (
	CategoryIrrigation    TaskCategory = "irrigation"
	CategoryFertilization TaskCategory = "fertilization"
	CategoryPestControl   TaskCategory = "pest_control"
	CategoryHarvesting    TaskCategory = "harvesting"
	CategoryPlanting      TaskCategory = "planting"
	CategoryMonitoring    TaskCategory = "monitoring"
	CategoryEquipment     TaskCategory = "equipment"
	CategoryWeatherAlert  TaskCategory = "weather_alert"
	CategoryMarket        TaskCategory = "market"
	CategoryCompliance    TaskCategory = "compliance"
)

// TaskPriority ranks a farmer task. Unlike ActionPriority it includes an
// urgent level used by weather alerts and health-escalated stage tasks.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Rank returns the sort weight of a priority, higher meaning more urgent.
// Unknown values rank below low so malformed rows sort last.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 4
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskStatus represents the lifecycle state of a farmer task.
//
// Transitions: pending -> in_progress -> completed;
// pending|in_progress -> overdue (time-driven, via reconciliation);
// pending|in_progress|overdue -> completed|cancelled.
// completed and cancelled are terminal; rows are retained for audit.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
	TaskCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// ActiveTaskStatuses are the states eligible for alerting and the overdue
// sweep. Overdue is intentionally excluded: an overdue task has already
// been flagged, but it can still be completed or cancelled.
var ActiveTaskStatuses = []TaskStatus{TaskPending, TaskInProgress}

// AlertKind identifies the deduplication key of a dispatched alert.
// Reminder kinds are derived per offset, e.g. "reminder_24h".
type AlertKind string

const (
	AlertOverdue         AlertKind = "overdue"
	AlertUrgent          AlertKind = "urgent"
	AlertWeatherSuitable AlertKind = "weather_suitable"
	AlertWeatherWarning  AlertKind = "weather_warning"
)

// ReminderKind derives the deduplication key for a reminder fired hoursBefore
// the due date.
func ReminderKind(hoursBefore int) AlertKind {
	return AlertKind(fmt.Sprintf("reminder_%dh", hoursBefore))
}

// ChannelType identifies a notification delivery channel.
type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelSMS      ChannelType = "sms"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelPush     ChannelType = "push"
)
