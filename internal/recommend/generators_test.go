package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/agronomy"
	"cropwatch/internal/types"
)

func mustRequirement(t *testing.T, stage types.GrowthStage) agronomy.StageRequirement {
	t.Helper()
	req, err := agronomy.RequirementFor(stage)
	require.NoError(t, err)
	return req
}

func TestIrrigationActionFiresUnderFullWaterStress(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID:      1,
		AreaHa:      2.0,
		GrowthStage: "Vegetative_Growth",
		SoilMoist:   types.Float(0),
	}
	forecast := types.WeatherForecast{Precip7Day: types.Float(0)}

	stress, err := agronomy.StressIndicators(m, forecast)
	require.NoError(t, err)
	require.InDelta(t, 1.0, stress[agronomy.StressWater], 1e-9)

	actions := irrigationActions(m, types.StageVegetativeGrowth,
		mustRequirement(t, types.StageVegetativeGrowth), forecast, stress)

	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, types.ActionIrrigation, a.ActionType)
	assert.Equal(t, types.PriorityHigh, a.Priority)
	assert.Equal(t, types.TimingImmediate, a.Timing)
	assert.Equal(t, []int{1}, a.ZoneIDs)
	// base(35) * (1 + 1.0*0.3) - 0 = 45.5mm
	require.NotNil(t, a.ApplicationRate)
	assert.InDelta(t, 45.5, *a.ApplicationRate, 1e-9)
	assert.Equal(t, "mm", a.ApplicationUnit)
	// 45.5mm * 830 INR/mm/ha * 2ha
	assert.InDelta(t, 45.5*830*2, a.Cost(), 1e-6)
}

func TestIrrigationActionModerateStressIsMediumPriority(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID:      2,
		AreaHa:      1.0,
		GrowthStage: "Tuber_Bulking",
		SoilMoist:   types.Float(18),
	}
	forecast := types.WeatherForecast{Precip7Day: types.Float(10)}

	stress, err := agronomy.StressIndicators(m, forecast)
	require.NoError(t, err)
	require.Less(t, stress[agronomy.StressWater], 0.7)

	actions := irrigationActions(m, types.StageTuberBulking,
		mustRequirement(t, types.StageTuberBulking), forecast, stress)

	require.Len(t, actions, 1)
	assert.Equal(t, types.PriorityMedium, actions[0].Priority)
	assert.Equal(t, types.TimingWithinWeek, actions[0].Timing)
}

func TestIrrigationSkippedWhenRainCoversRequirement(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID:      3,
		AreaHa:      1.0,
		GrowthStage: "Maturation", // base requirement 15mm
		SoilMoist:   types.Float(30),
	}
	forecast := types.WeatherForecast{Precip7Day: types.Float(40)}

	stress, err := agronomy.StressIndicators(m, forecast)
	require.NoError(t, err)

	actions := irrigationActions(m, types.StageMaturation,
		mustRequirement(t, types.StageMaturation), forecast, stress)
	assert.Empty(t, actions)
}

func TestFertilizerActionsSevereDeficiency(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID:      4,
		AreaHa:      1.5,
		GrowthStage: "Tuber_Initiation",
		Nutrients: types.NutrientMap{
			types.NutrientNitrogen:   20,  // severe deficiency (< 25)
			types.NutrientPhosphorus: 30,  // sufficient
			types.NutrientPotassium:  220, // sufficient
		},
	}
	status, err := agronomy.AssessNutrients(m)
	require.NoError(t, err)

	actions, err := fertilizerActions(m, types.StageTuberInitiation,
		mustRequirement(t, types.StageTuberInitiation), status)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, types.ActionFertilization, a.ActionType)
	assert.Equal(t, types.PriorityHigh, a.Priority)
	assert.Equal(t, types.TimingImmediate, a.Timing)
	assert.Contains(t, a.Description, "severe_deficiency")
	// deficit (45-20) * 2.5 kg/ha per ppm
	require.NotNil(t, a.ApplicationRate)
	assert.InDelta(t, 62.5, *a.ApplicationRate, 1e-9)
	assert.Equal(t, "kg/ha", a.ApplicationUnit)
	assert.InDelta(t, 62.5*1.5*99.6, a.Cost(), 1e-6)
}

func TestFertilizerCriticalNutrientEscalatesMildDeficiency(t *testing.T) {
	// Potassium is critical during tuber initiation, so even a mild
	// deficiency goes out as high priority.
	m := types.ZoneMeasurement{
		ZoneID:      5,
		AreaHa:      1.0,
		GrowthStage: "Tuber_Initiation",
		Nutrients: types.NutrientMap{
			types.NutrientNitrogen:   50,
			types.NutrientPhosphorus: 30,
			types.NutrientPotassium:  140, // deficiency (120 <= x < 160)
		},
	}
	status, err := agronomy.AssessNutrients(m)
	require.NoError(t, err)

	actions, err := fertilizerActions(m, types.StageTuberInitiation,
		mustRequirement(t, types.StageTuberInitiation), status)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, types.PriorityHigh, actions[0].Priority)
	assert.Contains(t, actions[0].Description, "potassium")
}

func TestFertilizerMildDeficiencyNonCriticalIsMedium(t *testing.T) {
	m := types.ZoneMeasurement{
		ZoneID:      6,
		AreaHa:      1.0,
		GrowthStage: "Vegetative_Growth", // nitrogen is the only critical nutrient
		Nutrients: types.NutrientMap{
			types.NutrientNitrogen:   50,
			types.NutrientPhosphorus: 15, // deficiency, not critical here
			types.NutrientPotassium:  220,
		},
	}
	status, err := agronomy.AssessNutrients(m)
	require.NoError(t, err)

	actions, err := fertilizerActions(m, types.StageVegetativeGrowth,
		mustRequirement(t, types.StageVegetativeGrowth), status)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, types.PriorityMedium, actions[0].Priority)
	assert.Equal(t, types.TimingWithinWeek, actions[0].Timing)
}

func TestPestActionsBlightWindow(t *testing.T) {
	m := types.ZoneMeasurement{ZoneID: 7, AreaHa: 2.0}

	tests := []struct {
		name       string
		humidity   float64
		temp       float64
		wantBlight bool
	}{
		{"humid and mild", 85, 20, true},
		{"humid but hot", 85, 26, false},
		{"humid but cold", 85, 15, false},
		{"dry", 70, 20, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			forecast := types.WeatherForecast{
				AvgHumidity7D: types.Float(tc.humidity),
				AvgTemp7Day:   types.Float(tc.temp),
			}
			actions := pestActions(m, types.StageTuberBulking, forecast)
			if tc.wantBlight {
				require.Len(t, actions, 1)
				assert.Equal(t, types.PriorityHigh, actions[0].Priority)
				assert.InDelta(t, 45.0*2.0, actions[0].Cost(), 1e-9)
			} else {
				assert.Empty(t, actions)
			}
		})
	}
}

func TestPestActionsBeetleMonitoring(t *testing.T) {
	m := types.ZoneMeasurement{ZoneID: 8, AreaHa: 3.0}
	forecast := types.WeatherForecast{
		AvgHumidity7D: types.Float(60),
		AvgTemp7Day:   types.Float(18),
	}

	for _, stage := range []types.GrowthStage{types.StageEmergence, types.StageVegetativeGrowth} {
		actions := pestActions(m, stage, forecast)
		require.Len(t, actions, 1, stage)
		a := actions[0]
		assert.Equal(t, types.PriorityMedium, a.Priority)
		assert.Nil(t, a.ApplicationRate)
		assert.InDelta(t, 25.0*3.0, a.Cost(), 1e-9)
	}

	// Outside the vulnerable stages nothing fires.
	assert.Empty(t, pestActions(m, types.StageTuberBulking, forecast))

	// Too cold for beetle activity.
	cold := types.WeatherForecast{AvgTemp7Day: types.Float(12)}
	assert.Empty(t, pestActions(m, types.StageEmergence, cold))
}

func TestPestActionsBothCanFire(t *testing.T) {
	m := types.ZoneMeasurement{ZoneID: 9, AreaHa: 1.0}
	forecast := types.WeatherForecast{
		AvgHumidity7D: types.Float(90),
		AvgTemp7Day:   types.Float(20),
	}
	actions := pestActions(m, types.StageEmergence, forecast)
	require.Len(t, actions, 2)
	assert.Equal(t, types.PriorityHigh, actions[0].Priority)
	assert.Equal(t, types.PriorityMedium, actions[1].Priority)
}
