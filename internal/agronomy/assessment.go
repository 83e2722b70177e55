package agronomy

import (
	"cropwatch/internal/types"
)

// Stress indicator names. Each maps to a score in [0,1].
const (
	StressWater       = "water_stress"
	StressTemperature = "temperature_stress"
	StressNutrient    = "nutrient_stress"
)

// AssessHealth derives the qualitative zone health from the mean vegetation
// indices. Thresholds are checked highest-specificity first; both indices
// must clear a band's floor for the zone to qualify.
func AssessHealth(m types.ZoneMeasurement) types.HealthStatus {
	ndvi, ndre := m.NDVI(), m.NDRE()
	switch {
	case ndvi > 0.7 && ndre > 0.4:
		return types.HealthExcellent
	case ndvi > 0.5 && ndre > 0.3:
		return types.HealthGood
	case ndvi > 0.3 && ndre > 0.2:
		return types.HealthFair
	default:
		return types.HealthPoor
	}
}

// classify places a level in exactly one status bucket. Boundaries are
// half-open: a level equal to a lower breakpoint belongs to the bucket
// above it, and excess requires strictly exceeding the upper breakpoint.
func classify(level float64, t NutrientThresholds) types.NutrientStatus {
	switch {
	case level < t.SevereDeficiency:
		return types.NutrientSevereDeficiency
	case level < t.Deficiency:
		return types.NutrientDeficiency
	case level < t.Sufficient:
		return types.NutrientMarginal
	case level > t.Excess:
		return types.NutrientExcess
	default:
		return types.NutrientSufficient
	}
}

// AssessNutrients classifies each assessed nutrient for the zone. Missing
// levels default per the measurement contract. The only error source is a
// missing threshold row, which indicates a configuration bug.
func AssessNutrients(m types.ZoneMeasurement) (map[types.Nutrient]types.NutrientStatus, error) {
	status := make(map[types.Nutrient]types.NutrientStatus, len(types.AssessedNutrients))
	for _, n := range types.AssessedNutrients {
		t, err := ThresholdsFor(n)
		if err != nil {
			return nil, err
		}
		status[n] = classify(m.NutrientLevel(n), t)
	}
	return status, nil
}

// StressIndicators computes the [0,1] stress scores for a zone given the
// weather forecast.
//
// Water stress multiplies soil-moisture depletion below 25% by the 7-day
// precipitation shortfall below 20mm, so either adequate moisture or
// adequate rain zeroes it. Temperature stress accrues above 30C, saturating
// at 40C. Nutrient stress measures the nitrogen shortfall against the
// sufficiency threshold.
func StressIndicators(m types.ZoneMeasurement, forecast types.WeatherForecast) (map[string]float64, error) {
	out := make(map[string]float64, 3)

	soil := m.SoilMoisture()
	precip := forecast.Precip7DayOr(types.DefaultPrecip7DayStress)
	out[StressWater] = clamp01(max0((25-soil)/25) * max0((20-precip)/20))

	maxTemp := forecast.MaxTemp7DayOr(types.DefaultMaxTemp7Day)
	tempStress := 0.0
	if maxTemp > 30 {
		tempStress = (maxTemp - 30) / 10
	}
	out[StressTemperature] = clamp01(max0(tempStress))

	nitrogenThresholds, err := ThresholdsFor(types.NutrientNitrogen)
	if err != nil {
		return nil, err
	}
	sufficient := nitrogenThresholds.Sufficient
	out[StressNutrient] = clamp01(max0((sufficient - m.NutrientLevel(types.NutrientNitrogen)) / sufficient))

	return out, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
