package types

import (
	"time"
)

// Default values applied when an optional zone measurement is absent.
// These mirror the upstream aggregation pipeline's fallbacks so a partial
// measurement row still produces a usable assessment.
const (
	DefaultNDVI          = 0.5
	DefaultNDRE          = 0.3
	DefaultSoilMoisture  = 25.0 // percent
	DefaultNutrientLevel = 50.0 // ppm
)

// GeoPoint is a geographic coordinate attached to a task or zone.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ZoneMeasurement is one management zone's current state as delivered by the
// zone measurement provider (satellite index aggregation plus nutrient
// prediction upstream). It is ephemeral input to a recommendation run and is
// not persisted by this core.
//
// Optional fields are pointers; accessor methods apply the documented
// defaults so callers never branch on presence.
type ZoneMeasurement struct {
	ZoneID      int         `json:"zone_id" validate:"required"`
	AreaHa      float64     `json:"area_ha" validate:"required,gt=0"`
	GrowthStage string      `json:"growth_stage"`
	NDVIMean    *float64    `json:"ndvi_mean,omitempty"`
	NDREMean    *float64    `json:"ndre_mean,omitempty"`
	Nutrients   NutrientMap `json:"nutrients,omitempty"`
	SoilMoist   *float64    `json:"soil_moisture,omitempty"`
}

// NutrientMap holds measured nutrient levels in ppm, keyed by nutrient.
type NutrientMap map[Nutrient]float64

// NDVI returns the measured NDVI mean or DefaultNDVI when absent.
func (m ZoneMeasurement) NDVI() float64 {
	if m.NDVIMean == nil {
		return DefaultNDVI
	}
	return *m.NDVIMean
}

// NDRE returns the measured NDRE mean or DefaultNDRE when absent.
func (m ZoneMeasurement) NDRE() float64 {
	if m.NDREMean == nil {
		return DefaultNDRE
	}
	return *m.NDREMean
}

// SoilMoisture returns the measured soil moisture percentage or
// DefaultSoilMoisture when absent.
func (m ZoneMeasurement) SoilMoisture() float64 {
	if m.SoilMoist == nil {
		return DefaultSoilMoisture
	}
	return *m.SoilMoist
}

// NutrientLevel returns the measured level for a nutrient or
// DefaultNutrientLevel when the nutrient was not measured.
func (m ZoneMeasurement) NutrientLevel(n Nutrient) float64 {
	if lvl, ok := m.Nutrients[n]; ok {
		return lvl
	}
	return DefaultNutrientLevel
}

// RecommendationAction is a single prioritized, costed field operation
// derived for one zone. Actions are immutable once produced; a nil
// EstimatedCost aggregates as zero.
type RecommendationAction struct {
	ActionType      ActionType     `json:"action_type"`
	Priority        ActionPriority `json:"priority"`
	Description     string         `json:"description"`
	Timing          Timing         `json:"timing"`
	ZoneIDs         []int          `json:"zone_ids"`
	ApplicationRate *float64       `json:"application_rate,omitempty"`
	ApplicationUnit string         `json:"application_unit,omitempty"`
	EstimatedCost   *float64       `json:"estimated_cost,omitempty"`
	ExpectedBenefit string         `json:"expected_benefit,omitempty"`
}

// Cost returns the estimated cost, defaulting to zero when unset.
func (a RecommendationAction) Cost() float64 {
	if a.EstimatedCost == nil {
		return 0
	}
	return *a.EstimatedCost
}

// ZoneRecommendation bundles the derived state and actions for one zone.
type ZoneRecommendation struct {
	ZoneID           int                         `json:"zone_id"`
	AreaHa           float64                     `json:"area_ha"`
	GrowthStage      string                      `json:"growth_stage"`
	HealthStatus     HealthStatus                `json:"health_status"`
	NutrientStatus   map[Nutrient]NutrientStatus `json:"nutrient_status"`
	StressIndicators map[string]float64          `json:"stress_indicators"`
	Actions          []RecommendationAction      `json:"actions"`
	YieldImpact      float64                     `json:"estimated_yield_impact"`
	TotalCost        float64                     `json:"total_cost"`
}

// FieldSummary aggregates zone-level results for the field dashboard.
type FieldSummary struct {
	TotalAreaHa           float64              `json:"total_area_ha"`
	TotalZones            int                  `json:"total_zones"`
	HealthDistribution    map[HealthStatus]int `json:"health_distribution"`
	HighPriorityActions   int                  `json:"high_priority_actions"`
	AverageYieldImpact    float64              `json:"average_yield_impact"`
	ZonesNeedingAttention int                  `json:"zones_needing_attention"`
}

// FieldRecommendation is the complete advisory output for one field at one
// analysis time.
type FieldRecommendation struct {
	FieldID      string               `json:"field_id"`
	AnalysisDate time.Time            `json:"analysis_date"`
	Zones        []ZoneRecommendation `json:"zones"`
	Summary      FieldSummary         `json:"summary"`
	TotalCost    float64              `json:"total_cost"`
	ExpectedROI  float64              `json:"expected_roi"`
}

// ScheduledAction is one row of the forward-looking action schedule derived
// from a FieldRecommendation.
type ScheduledAction struct {
	Date            time.Time      `json:"date"`
	ZoneID          int            `json:"zone_id"`
	ActionType      ActionType     `json:"action_type"`
	Priority        ActionPriority `json:"priority"`
	Description     string         `json:"description"`
	ApplicationRate *float64       `json:"application_rate,omitempty"`
	ApplicationUnit string         `json:"application_unit,omitempty"`
	EstimatedCost   float64        `json:"estimated_cost"`
	AreaHa          float64        `json:"area_ha"`
}

// FarmerTask is the persisted unit of work. Tasks are created by the
// recommendation conversion, weather alerting, or growth-stage generation,
// mutated only through status transitions, and never physically deleted in
// normal operation.
type FarmerTask struct {
	ID              string       `json:"id" db:"id"`
	Title           string       `json:"title" db:"title"`
	Description     string       `json:"description" db:"description"`
	Category        TaskCategory `json:"category" db:"category"`
	Priority        TaskPriority `json:"priority" db:"priority"`
	Status          TaskStatus   `json:"status" db:"status"`
	FieldID         string       `json:"field_id" db:"field_id"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	DueDate         time.Time    `json:"due_date" db:"due_date"`
	EstimatedMins   int          `json:"estimated_duration" db:"estimated_duration"`
	CostEstimate    float64      `json:"cost_estimate" db:"cost_estimate"`
	AutoGenerated   bool         `json:"auto_generated" db:"auto_generated"`
	AIConfidence    float64      `json:"ai_confidence" db:"ai_confidence"`
	CompletionNotes string       `json:"completion_notes,omitempty" db:"completion_notes"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty" db:"completed_at"`

	// Location
	ZoneID      string    `json:"zone_id,omitempty" db:"zone_id"`
	AreaHa      *float64  `json:"area_hectares,omitempty" db:"area_hectares"`
	Coordinates *GeoPoint `json:"coordinates,omitempty" db:"coordinates"`

	// Resources
	EquipmentNeeded StringList `json:"equipment_needed" db:"equipment_needed"`
	MaterialsNeeded StringList `json:"materials_needed" db:"materials_needed"`

	// Conditions
	WeatherDependent bool       `json:"weather_dependent" db:"weather_dependent"`
	RiskFactors      StringList `json:"risk_factors" db:"risk_factors"`
}

// TaskEvent is one row of the append-only task audit trail. An event is
// recorded for task creation and for every status transition.
type TaskEvent struct {
	ID         string     `json:"id" db:"id"`
	TaskID     string     `json:"task_id" db:"task_id"`
	EventType  string     `json:"event_type" db:"event_type"`
	FromStatus TaskStatus `json:"from_status,omitempty" db:"from_status"`
	ToStatus   TaskStatus `json:"to_status,omitempty" db:"to_status"`
	Note       string     `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Task audit event types.
const (
	TaskEventCreated       = "created"
	TaskEventStatusChanged = "status_changed"
	TaskEventMarkedOverdue = "marked_overdue"
)

// SentAlertRecord is one row of the append-only alert dispatch log. The
// (TaskID, Kind) pair is the deduplication key: claiming it atomically is
// what enforces at-most-once dispatch per kind.
type SentAlertRecord struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	Kind      AlertKind `json:"alert_kind" db:"alert_kind"`
	Recipient string    `json:"recipient" db:"recipient"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}

// TaskFilter narrows task queries. Empty slices mean no filtering on that
// dimension. FieldIDs is always required.
type TaskFilter struct {
	FieldIDs   []string
	Statuses   []TaskStatus
	Categories []TaskCategory
	Priorities []TaskPriority
}

// CategoryStats is the per-category slice of a task summary.
type CategoryStats struct {
	Count     int `json:"count"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// TaskSummary is the dashboard-facing rollup for a field set.
type TaskSummary struct {
	TotalTasks         int                            `json:"total_tasks"`
	Pending            int                            `json:"pending"`
	InProgress         int                            `json:"in_progress"`
	Completed          int                            `json:"completed"`
	Overdue            int                            `json:"overdue"`
	UpcomingThreeDays  int                            `json:"upcoming_3_days"`
	UrgentTasks        int                            `json:"urgent_tasks"`
	AutoGenerated      int                            `json:"auto_generated"`
	TotalEstimatedCost float64                        `json:"total_estimated_cost"`
	Categories         map[TaskCategory]CategoryStats `json:"categories"`
}

// AlertAction is a quick action offered with a notification payload.
type AlertAction struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// AlertMessage is the channel-independent notification payload produced by
// the alert scanner and consumed by every delivery channel.
type AlertMessage struct {
	Title           string        `json:"title"`
	Body            string        `json:"body"`
	Priority        TaskPriority  `json:"priority"`
	TaskID          string        `json:"task_id"`
	FieldID         string        `json:"field_id"`
	ZoneID          string        `json:"zone_id,omitempty"`
	EquipmentNeeded []string      `json:"equipment_needed,omitempty"`
	MaterialsNeeded []string      `json:"materials_needed,omitempty"`
	Actions         []AlertAction `json:"actions,omitempty"`
}

// DashboardAlert is the in-memory, dashboard-visible record of a dispatched
// alert with a read/unread flag.
type DashboardAlert struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Kind      AlertKind     `json:"type"`
	Priority  TaskPriority  `json:"priority"`
	TaskID    string        `json:"task_id"`
	FieldID   string        `json:"field_id"`
	Timestamp time.Time     `json:"timestamp"`
	Actions   []AlertAction `json:"actions,omitempty"`
	Read      bool          `json:"read"`
}
