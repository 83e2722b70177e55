// Package agronomy holds the static crop-management reference data for
// potato cultivation and the zone assessment logic built on it: growth-stage
// requirement rows, nutrient thresholds, fertilizer pricing, and the
// qualitative health/nutrient/stress derivations.
//
// All tables are fixed at compile time and never mutated; lookups for
// entries that are not configured are configuration bugs and surface as
// hard errors rather than defaults.
package agronomy

import (
	"cropwatch/internal/types"
)

// StageRequirement is one row of the growth-stage requirement table.
type StageRequirement struct {
	WaterRequirementMM  float64
	CriticalNutrients   []types.Nutrient
	IrrigationFrequency string
	FertilizerFocus     string
}

// stageRequirements maps each growth stage to its cultivation requirements.
var stageRequirements = map[types.GrowthStage]StageRequirement{
	types.StagePlanting: {
		WaterRequirementMM:  20,
		CriticalNutrients:   []types.Nutrient{types.NutrientPhosphorus},
		IrrigationFrequency: "daily",
		FertilizerFocus:     "starter",
	},
	types.StageEmergence: {
		WaterRequirementMM:  25,
		CriticalNutrients:   []types.Nutrient{types.NutrientNitrogen, types.NutrientPhosphorus},
		IrrigationFrequency: "every_2_days",
		FertilizerFocus:     "balanced",
	},
	types.StageVegetativeGrowth: {
		WaterRequirementMM:  35,
		CriticalNutrients:   []types.Nutrient{types.NutrientNitrogen},
		IrrigationFrequency: "every_2_days",
		FertilizerFocus:     "nitrogen",
	},
	types.StageTuberInitiation: {
		WaterRequirementMM:  45,
		CriticalNutrients:   []types.Nutrient{types.NutrientPotassium, types.NutrientCalcium},
		IrrigationFrequency: "daily",
		FertilizerFocus:     "potassium",
	},
	types.StageTuberBulking: {
		WaterRequirementMM:  50,
		CriticalNutrients:   []types.Nutrient{types.NutrientPotassium, types.NutrientMagnesium},
		IrrigationFrequency: "daily",
		FertilizerFocus:     "potassium",
	},
	types.StageMaturation: {
		WaterRequirementMM:  15,
		CriticalNutrients:   nil,
		IrrigationFrequency: "reduce",
		FertilizerFocus:     "none",
	},
}

// NutrientThresholds holds the four ascending breakpoints for one nutrient,
// in ppm: SevereDeficiency < Deficiency < Sufficient < Excess.
type NutrientThresholds struct {
	SevereDeficiency float64
	Deficiency       float64
	Sufficient       float64
	Excess           float64
}

var nutrientThresholds = map[types.Nutrient]NutrientThresholds{
	types.NutrientNitrogen:   {SevereDeficiency: 25, Deficiency: 35, Sufficient: 45, Excess: 75},
	types.NutrientPhosphorus: {SevereDeficiency: 12, Deficiency: 18, Sufficient: 25, Excess: 40},
	types.NutrientPotassium:  {SevereDeficiency: 120, Deficiency: 160, Sufficient: 200, Excess: 280},
	types.NutrientMagnesium:  {SevereDeficiency: 40, Deficiency: 60, Sufficient: 80, Excess: 140},
	types.NutrientCalcium:    {SevereDeficiency: 800, Deficiency: 1200, Sufficient: 1500, Excess: 2200},
}

// fertilizerPrices is the fertilizer cost per kg in INR.
var fertilizerPrices = map[types.Nutrient]float64{
	types.NutrientNitrogen:   99.6,
	types.NutrientPhosphorus: 124.5,
	types.NutrientPotassium:  66.4,
	types.NutrientMagnesium:  166.0,
	types.NutrientCalcium:    24.9,
}

// conversionFactors translate a ppm deficit into a fertilizer application
// rate in kg/ha per ppm.
var conversionFactors = map[types.Nutrient]float64{
	types.NutrientNitrogen:   2.5,
	types.NutrientPhosphorus: 4.0,
	types.NutrientPotassium:  1.8,
	types.NutrientMagnesium:  3.0,
	types.NutrientCalcium:    1.0,
}

// IrrigationCostPerMMHa is the irrigation cost in INR per mm of applied
// water per hectare.
const IrrigationCostPerMMHa = 830.0

// RequirementFor returns the requirement row for a stage. Every declared
// GrowthStage is configured; an unknown stage value indicates a caller that
// bypassed the parse policy and is reported as a configuration error.
func RequirementFor(stage types.GrowthStage) (StageRequirement, error) {
	req, ok := stageRequirements[stage]
	if !ok {
		return StageRequirement{}, types.NewAppError(types.ErrCodeConfigUnknownStage,
			"no requirement row configured for growth stage "+string(stage), nil)
	}
	return req, nil
}

// ThresholdsFor returns the breakpoints for a nutrient, or a configuration
// error when the nutrient has no threshold row.
func ThresholdsFor(n types.Nutrient) (NutrientThresholds, error) {
	t, ok := nutrientThresholds[n]
	if !ok {
		return NutrientThresholds{}, types.NewAppError(types.ErrCodeConfigUnknownNutrient,
			"no thresholds configured for nutrient "+string(n), nil)
	}
	return t, nil
}

// PricePerKg returns the fertilizer price for a nutrient, or a configuration
// error when the nutrient has no price row.
func PricePerKg(n types.Nutrient) (float64, error) {
	p, ok := fertilizerPrices[n]
	if !ok {
		return 0, types.NewAppError(types.ErrCodeConfigUnknownNutrient,
			"no fertilizer price configured for nutrient "+string(n), nil)
	}
	return p, nil
}

// ConversionFactor returns the ppm-to-kg/ha conversion factor for a
// nutrient, or a configuration error when the nutrient has none.
func ConversionFactor(n types.Nutrient) (float64, error) {
	f, ok := conversionFactors[n]
	if !ok {
		return 0, types.NewAppError(types.ErrCodeConfigUnknownNutrient,
			"no conversion factor configured for nutrient "+string(n), nil)
	}
	return f, nil
}

// Critical reports whether the nutrient is critical for the given stage
// requirement row.
func (r StageRequirement) Critical(n types.Nutrient) bool {
	for _, c := range r.CriticalNutrients {
		if c == n {
			return true
		}
	}
	return false
}
