// Package recommend implements the advisory core: per-zone action
// generators, the field-level recommendation engine, cost/yield-impact
// aggregation, ROI estimation, and the forward action schedule.
//
// Generators are pure functions over a zone measurement, the agronomy
// reference tables, the weather forecast, and the derived assessment state.
// Within a zone, actions are ordered irrigation, fertilization, pest.
package recommend

import (
	"fmt"

	"cropwatch/internal/agronomy"
	"cropwatch/internal/types"
)

// Generator tuning constants.
const (
	// waterStressBoost scales the base water requirement by up to 30%
	// under full water stress.
	waterStressBoost = 0.3

	// minIrrigationMM is the floor below which an irrigation action is not
	// worth scheduling.
	minIrrigationMM = 5.0

	// highWaterStress is the water-stress score above which irrigation
	// becomes a high-priority, immediate action.
	highWaterStress = 0.7

	// Late-blight infection window: sustained humidity above 80% with
	// average temperatures between 15C and 25C.
	blightHumidityMin = 80.0
	blightTempMin     = 15.0
	blightTempMax     = 25.0

	blightSprayRateLHa   = 2.5
	blightCostPerHa      = 45.0
	beetleCostPerHa      = 25.0
	beetleActiveTempMinC = 15.0
)

// irrigationActions derives the zone's irrigation action, if any. An
// unrecognized growth stage has already been coerced by the caller via the
// agronomy fallback policy.
func irrigationActions(
	m types.ZoneMeasurement,
	stage types.GrowthStage,
	req agronomy.StageRequirement,
	forecast types.WeatherForecast,
	stress map[string]float64,
) []types.RecommendationAction {
	waterStress := stress[agronomy.StressWater]
	precip := forecast.Precip7DayOr(types.DefaultPrecip7DayNet)

	net := req.WaterRequirementMM*(1+waterStress*waterStressBoost) - precip
	if net < 0 {
		net = 0
	}
	if net <= minIrrigationMM {
		return nil
	}

	priority := types.PriorityMedium
	timing := types.TimingWithinWeek
	if waterStress > highWaterStress {
		priority = types.PriorityHigh
		timing = types.TimingImmediate
	}

	cost := net * agronomy.IrrigationCostPerMMHa * m.AreaHa

	return []types.RecommendationAction{{
		ActionType: types.ActionIrrigation,
		Priority:   priority,
		Description: fmt.Sprintf(
			"Apply %.1fmm irrigation based on growth stage requirements and stress indicators", net),
		Timing:          timing,
		ZoneIDs:         []int{m.ZoneID},
		ApplicationRate: types.Float(net),
		ApplicationUnit: "mm",
		EstimatedCost:   types.Float(cost),
		ExpectedBenefit: fmt.Sprintf(
			"Reduce water stress, maintain optimal soil moisture for %s stage", stage),
	}}
}

// fertilizerActions derives one corrective action per deficient nutrient.
// Nutrients are visited in the fixed assessment order so output is
// deterministic. Reference-table gaps surface as configuration errors.
func fertilizerActions(
	m types.ZoneMeasurement,
	stage types.GrowthStage,
	req agronomy.StageRequirement,
	nutrientStatus map[types.Nutrient]types.NutrientStatus,
) ([]types.RecommendationAction, error) {
	var actions []types.RecommendationAction

	for _, nutrient := range types.AssessedNutrients {
		status, ok := nutrientStatus[nutrient]
		if !ok || !status.Deficient() {
			continue
		}

		thresholds, err := agronomy.ThresholdsFor(nutrient)
		if err != nil {
			return nil, err
		}
		factor, err := agronomy.ConversionFactor(nutrient)
		if err != nil {
			return nil, err
		}
		price, err := agronomy.PricePerKg(nutrient)
		if err != nil {
			return nil, err
		}

		current := m.NutrientLevel(nutrient)
		target := thresholds.Sufficient
		rate := (target - current) * factor

		priority := types.PriorityMedium
		timing := types.TimingWithinWeek
		if status == types.NutrientSevereDeficiency || req.Critical(nutrient) {
			priority = types.PriorityHigh
			timing = types.TimingImmediate
		}

		cost := rate * m.AreaHa * price

		actions = append(actions, types.RecommendationAction{
			ActionType: types.ActionFertilization,
			Priority:   priority,
			Description: fmt.Sprintf(
				"Apply %s fertilizer to address %s (current: %.1f ppm, target: %.0f ppm)",
				nutrient, status, current, target),
			Timing:          timing,
			ZoneIDs:         []int{m.ZoneID},
			ApplicationRate: types.Float(rate),
			ApplicationUnit: "kg/ha",
			EstimatedCost:   types.Float(cost),
			ExpectedBenefit: fmt.Sprintf(
				"Increase %s levels to support %s requirements", nutrient, stage),
		})
	}

	return actions, nil
}

// pestActions derives disease and pest actions from the forecast window.
// Late blight wants humid, mild weather; Colorado beetle pressure is a
// concern in early canopy stages once temperatures support activity.
func pestActions(
	m types.ZoneMeasurement,
	stage types.GrowthStage,
	forecast types.WeatherForecast,
) []types.RecommendationAction {
	var actions []types.RecommendationAction

	humidity := forecast.AvgHumidity7DayOr(types.DefaultAvgHumidity7Day)
	temp := forecast.AvgTemp7DayOr(types.DefaultAvgTemp7Day)

	if humidity > blightHumidityMin && temp > blightTempMin && temp < blightTempMax {
		actions = append(actions, types.RecommendationAction{
			ActionType:      types.ActionPestManagement,
			Priority:        types.PriorityHigh,
			Description:     "High late blight risk detected. Apply preventive fungicide treatment",
			Timing:          types.TimingImmediate,
			ZoneIDs:         []int{m.ZoneID},
			ApplicationRate: types.Float(blightSprayRateLHa),
			ApplicationUnit: "L/ha",
			EstimatedCost:   types.Float(blightCostPerHa * m.AreaHa),
			ExpectedBenefit: "Prevent late blight infection and potential yield loss",
		})
	}

	if (stage == types.StageEmergence || stage == types.StageVegetativeGrowth) && temp > beetleActiveTempMinC {
		actions = append(actions, types.RecommendationAction{
			ActionType:      types.ActionPestManagement,
			Priority:        types.PriorityMedium,
			Description:     "Monitor for Colorado potato beetle and apply treatment if threshold exceeded",
			Timing:          types.TimingWithinWeek,
			ZoneIDs:         []int{m.ZoneID},
			EstimatedCost:   types.Float(beetleCostPerHa * m.AreaHa),
			ExpectedBenefit: "Early detection and control of Colorado potato beetle",
		})
	}

	return actions
}
