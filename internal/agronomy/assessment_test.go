package agronomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/types"
)

func TestAssessHealth(t *testing.T) {
	tests := []struct {
		name string
		ndvi *float64
		ndre *float64
		want types.HealthStatus
	}{
		{"excellent", types.Float(0.75), types.Float(0.5), types.HealthExcellent},
		{"good", types.Float(0.65), types.Float(0.35), types.HealthGood},
		{"fair", types.Float(0.45), types.Float(0.25), types.HealthFair},
		{"poor", types.Float(0.2), types.Float(0.1), types.HealthPoor},
		// NDVI clears excellent but NDRE only clears good.
		{"ndre limits band", types.Float(0.8), types.Float(0.35), types.HealthGood},
		// Boundary values do not qualify; thresholds are strict.
		{"boundary is exclusive", types.Float(0.7), types.Float(0.4), types.HealthGood},
		// Missing indices use the documented defaults (0.5, 0.3) -> fair.
		{"defaults", nil, nil, types.HealthFair},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := types.ZoneMeasurement{ZoneID: 1, AreaHa: 1, NDVIMean: tc.ndvi, NDREMean: tc.ndre}
			assert.Equal(t, tc.want, AssessHealth(m))
		})
	}
}

func TestClassifyBucketsAreExclusiveAndOrdered(t *testing.T) {
	thresholds, err := ThresholdsFor(types.NutrientNitrogen)
	require.NoError(t, err)

	tests := []struct {
		level float64
		want  types.NutrientStatus
	}{
		{10, types.NutrientSevereDeficiency},
		{24.9, types.NutrientSevereDeficiency},
		{25, types.NutrientDeficiency}, // half-open: boundary belongs to the bucket above
		{34.9, types.NutrientDeficiency},
		{35, types.NutrientMarginal},
		{44.9, types.NutrientMarginal},
		{45, types.NutrientSufficient},
		{75, types.NutrientSufficient}, // excess requires strictly above the breakpoint
		{75.1, types.NutrientExcess},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classify(tc.level, thresholds), "level %.1f", tc.level)
	}

	// Sweep a wide range: classification must be monotonic (never step back
	// to a lower bucket as the level rises) and always yield a bucket.
	order := map[types.NutrientStatus]int{
		types.NutrientSevereDeficiency: 0,
		types.NutrientDeficiency:       1,
		types.NutrientMarginal:         2,
		types.NutrientSufficient:       3,
		types.NutrientExcess:           4,
	}
	prev := -1
	for level := 0.0; level <= 120; level += 0.5 {
		status := classify(level, thresholds)
		rank, ok := order[status]
		require.True(t, ok, "level %.1f produced unknown status %q", level, status)
		assert.GreaterOrEqual(t, rank, prev, "classification regressed at level %.1f", level)
		prev = rank
	}
}

func TestAssessNutrients(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID: 3, AreaHa: 1.8,
		Nutrients: types.NutrientMap{
			types.NutrientNitrogen:   20,  // below severe threshold 25
			types.NutrientPhosphorus: 22,  // marginal (18 <= x < 25)
			types.NutrientPotassium:  300, // above excess 280
		},
	}

	status, err := AssessNutrients(m)
	require.NoError(t, err)
	assert.Equal(t, types.NutrientSevereDeficiency, status[types.NutrientNitrogen])
	assert.Equal(t, types.NutrientMarginal, status[types.NutrientPhosphorus])
	assert.Equal(t, types.NutrientExcess, status[types.NutrientPotassium])
}

func TestAssessNutrientsDefaultsMissingLevels(t *testing.T) {
	status, err := AssessNutrients(types.ZoneMeasurement{ZoneID: 1, AreaHa: 1})
	require.NoError(t, err)

	// Level 50 against each nutrient's table: nitrogen sufficient,
	// phosphorus excess (>40), potassium severe deficiency (<120).
	assert.Equal(t, types.NutrientSufficient, status[types.NutrientNitrogen])
	assert.Equal(t, types.NutrientExcess, status[types.NutrientPhosphorus])
	assert.Equal(t, types.NutrientSevereDeficiency, status[types.NutrientPotassium])
}

func TestStressIndicators(t *testing.T) {
	tests := []struct {
		name     string
		m        types.ZoneMeasurement
		forecast types.WeatherForecast
		want     map[string]float64
	}{
		{
			name: "fully stressed zone",
			m: types.ZoneMeasurement{
				ZoneID: 1, AreaHa: 1,
				SoilMoist: types.Float(0),
				Nutrients: types.NutrientMap{types.NutrientNitrogen: 0},
			},
			forecast: types.WeatherForecast{
				Precip7Day:  types.Float(0),
				MaxTemp7Day: types.Float(45),
			},
			want: map[string]float64{
				StressWater:       1.0,
				StressTemperature: 1.0, // (45-30)/10 clamped
				StressNutrient:    1.0,
			},
		},
		{
			name: "rain cancels water stress",
			m: types.ZoneMeasurement{
				ZoneID: 1, AreaHa: 1,
				SoilMoist: types.Float(10),
				Nutrients: types.NutrientMap{types.NutrientNitrogen: 45},
			},
			forecast: types.WeatherForecast{
				Precip7Day:  types.Float(30),
				MaxTemp7Day: types.Float(28),
			},
			want: map[string]float64{
				StressWater:       0,
				StressTemperature: 0,
				StressNutrient:    0,
			},
		},
		{
			name: "defaults",
			m:    types.ZoneMeasurement{ZoneID: 1, AreaHa: 1},
			// soil=25 zeroes the moisture factor, temp=25 below 30,
			// nitrogen=50 above the 45 sufficiency threshold.
			forecast: types.WeatherForecast{},
			want: map[string]float64{
				StressWater:       0,
				StressTemperature: 0,
				StressNutrient:    0,
			},
		},
		{
			name: "partial water stress multiplies",
			m: types.ZoneMeasurement{
				ZoneID: 1, AreaHa: 1,
				SoilMoist: types.Float(12.5), // depletion factor 0.5
				Nutrients: types.NutrientMap{types.NutrientNitrogen: 36}, // (45-36)/45 = 0.2
			},
			forecast: types.WeatherForecast{
				Precip7Day:  types.Float(10), // shortfall factor 0.5
				MaxTemp7Day: types.Float(32), // 0.2
			},
			want: map[string]float64{
				StressWater:       0.25,
				StressTemperature: 0.2,
				StressNutrient:    0.2,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StressIndicators(tc.m, tc.forecast)
			require.NoError(t, err)
			for name, want := range tc.want {
				assert.InDelta(t, want, got[name], 1e-9, name)
				assert.GreaterOrEqual(t, got[name], 0.0, name)
				assert.LessOrEqual(t, got[name], 1.0, name)
			}
		})
	}
}

func TestReferenceTableLookups(t *testing.T) {
	for _, stage := range types.AllGrowthStages {
		req, err := RequirementFor(stage)
		require.NoError(t, err, stage)
		assert.Greater(t, req.WaterRequirementMM, 0.0, stage)
	}

	_, err := RequirementFor(types.GrowthStage("Dormancy"))
	assert.Error(t, err)

	// Unknown nutrient lookups are hard failures, not defaults.
	var appErr *types.AppError
	_, err = ThresholdsFor(types.Nutrient("sulfur"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeConfigUnknownNutrient, appErr.Code)

	_, err = PricePerKg(types.Nutrient("boron"))
	assert.Error(t, err)
	_, err = ConversionFactor(types.Nutrient("zinc"))
	assert.Error(t, err)
}

func TestStageOrFallback(t *testing.T) {
	s, ok := ParseGrowthStage("Tuber_Bulking")
	assert.True(t, ok)
	assert.Equal(t, types.StageTuberBulking, s)

	_, ok = ParseGrowthStage("tuber bulking")
	assert.False(t, ok)

	assert.Equal(t, types.StageVegetativeGrowth, StageOrFallback("not-a-stage"))
	assert.Equal(t, types.StageMaturation, StageOrFallback("Maturation"))
}

func TestCritical(t *testing.T) {
	req, err := RequirementFor(types.StageTuberInitiation)
	require.NoError(t, err)
	assert.True(t, req.Critical(types.NutrientPotassium))
	assert.True(t, req.Critical(types.NutrientCalcium))
	assert.False(t, req.Critical(types.NutrientNitrogen))
}
