// Package sim provides synthetic implementations of the measurement,
// weather, and crop-state provider interfaces. They stand in for the
// satellite and ML upstreams in local development and demos. Output is
// deterministic per field ID, so repeated calls for the same field return
// the same data within a run.
package sim

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"cropwatch/internal/types"
)

// fieldRand returns a generator seeded from the field ID so every provider
// derives the same stable scenario for a field.
func fieldRand(fieldID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(fieldID))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed>>1))
}

// in returns a value uniformly drawn from [lo, hi).
func in(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// ZoneProvider is a synthetic ZoneMeasurementProvider.
type ZoneProvider struct {
	// Zones is how many zones each field reports. Defaults to 4.
	Zones int
}

var _ types.ZoneMeasurementProvider = (*ZoneProvider)(nil)

// ZoneMeasurements generates per-zone measurements spanning healthy to
// stressed conditions, so generated recommendations exercise every severity
// band.
func (p *ZoneProvider) ZoneMeasurements(_ context.Context, fieldID string) ([]types.ZoneMeasurement, error) {
	zones := p.Zones
	if zones <= 0 {
		zones = 4
	}
	r := fieldRand(fieldID)

	stages := []types.GrowthStage{
		types.StageEmergence,
		types.StageVegetativeGrowth,
		types.StageTuberInitiation,
		types.StageTuberBulking,
	}
	stage := stages[r.IntN(len(stages))]

	out := make([]types.ZoneMeasurement, 0, zones)
	for i := 1; i <= zones; i++ {
		// Later zones trend more stressed.
		stress := float64(i-1) / float64(zones)
		ndvi := in(r, 0.75, 0.85) - stress*in(r, 0.25, 0.35)
		ndre := clamp01(ndvi - in(r, 0.15, 0.25))

		m := types.ZoneMeasurement{
			ZoneID:      i,
			AreaHa:      in(r, 1.5, 6.0),
			GrowthStage: string(stage),
			NDVIMean:    types.Float(clamp01(ndvi)),
			NDREMean:    types.Float(ndre),
			SoilMoist:   types.Float(in(r, 12, 38) - stress*8),
			Nutrients: types.NutrientMap{
				types.NutrientNitrogen:   in(r, 18, 45) - stress*in(r, 5, 15),
				types.NutrientPhosphorus: in(r, 10, 30),
				types.NutrientPotassium:  in(r, 80, 160) - stress*in(r, 10, 40),
			},
		}
		out = append(out, m)
	}
	return out, nil
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

// WeatherSim is a synthetic WeatherProvider.
type WeatherSim struct{}

var _ types.WeatherProvider = (*WeatherSim)(nil)

// Forecast generates a 7-day outlook. Roughly one field in four gets an
// extreme scenario (high wind, frost risk, or heavy rain) so weather-alert
// task generation stays exercised.
func (WeatherSim) Forecast(_ context.Context, fieldID string) (types.WeatherForecast, error) {
	r := fieldRand(fieldID)

	f := types.WeatherForecast{
		Precip7Day:    types.Float(in(r, 0, 25)),
		MaxTemp7Day:   types.Float(in(r, 22, 32)),
		AvgTemp7Day:   types.Float(in(r, 14, 24)),
		AvgHumidity7D: types.Float(in(r, 55, 90)),
		WindSpeed:     types.Float(in(r, 5, 25)),
		MinTemp:       types.Float(in(r, 4, 14)),
		Precipitation: types.Float(in(r, 0, 20)),
	}

	switch r.IntN(8) {
	case 0:
		f.WindSpeed = types.Float(in(r, 45, 70))
	case 1:
		f.MinTemp = types.Float(in(r, -3, 1.5))
	case 2:
		f.Precipitation = types.Float(in(r, 55, 110))
	}
	return f, nil
}

// Snapshot generates current conditions for the suitability checks.
func (WeatherSim) Snapshot(_ context.Context, fieldID string) (types.WeatherSnapshot, error) {
	r := fieldRand(fieldID)
	conditions := []string{"clear", "partly_cloudy", "overcast", "light_rain"}
	return types.WeatherSnapshot{
		Temperature: in(r, 12, 30),
		Humidity:    in(r, 45, 95),
		WindSpeed:   in(r, 0, 40),
		PrecipProb:  in(r, 0, 100),
		Conditions:  conditions[r.IntN(len(conditions))],
	}, nil
}

// CropSim is a synthetic CropStateProvider.
type CropSim struct{}

var _ types.CropStateProvider = (*CropSim)(nil)

// CropState generates a growth stage and field health score. Health skews
// high with an occasional struggling field to exercise priority escalation.
func (CropSim) CropState(_ context.Context, fieldID string) (types.CropState, error) {
	r := fieldRand(fieldID)
	stages := []types.GrowthStage{
		types.StageEmergence,
		types.StageVegetativeGrowth,
		types.StageTuberInitiation,
		types.StageTuberBulking,
		types.StageMaturation,
	}
	health := in(r, 72, 95)
	if r.IntN(5) == 0 {
		health = in(r, 45, 68)
	}
	return types.CropState{
		Stage:  string(stages[r.IntN(len(stages))]),
		Health: health,
	}, nil
}
