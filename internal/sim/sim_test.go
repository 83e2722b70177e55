package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/types"
)

func TestZoneMeasurementsDeterministicPerField(t *testing.T) {
	p := &ZoneProvider{}

	first, err := p.ZoneMeasurements(context.Background(), "field-1")
	require.NoError(t, err)
	second, err := p.ZoneMeasurements(context.Background(), "field-1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same field yields the same scenario")

	other, err := p.ZoneMeasurements(context.Background(), "field-2")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different fields yield different scenarios")
}

func TestZoneMeasurementsShape(t *testing.T) {
	p := &ZoneProvider{Zones: 6}

	zones, err := p.ZoneMeasurements(context.Background(), "field-9")
	require.NoError(t, err)
	require.Len(t, zones, 6)

	for _, z := range zones {
		assert.Greater(t, z.AreaHa, 0.0)
		assert.NotEmpty(t, z.GrowthStage)
		require.NotNil(t, z.NDVIMean)
		assert.GreaterOrEqual(t, *z.NDVIMean, 0.0)
		assert.LessOrEqual(t, *z.NDVIMean, 1.0)
		assert.Contains(t, z.Nutrients, types.NutrientNitrogen)
	}
	assert.Equal(t, 1, zones[0].ZoneID)
	assert.Equal(t, 6, zones[5].ZoneID)
}

func TestWeatherSimDeterministic(t *testing.T) {
	w := WeatherSim{}

	f1, err := w.Forecast(context.Background(), "field-1")
	require.NoError(t, err)
	f2, err := w.Forecast(context.Background(), "field-1")
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	s, err := w.Snapshot(context.Background(), "field-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.PrecipProb, 0.0)
	assert.LessOrEqual(t, s.PrecipProb, 100.0)
	assert.NotEmpty(t, s.Conditions)
}

func TestCropSimHealthRange(t *testing.T) {
	c := CropSim{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		state, err := c.CropState(context.Background(), id)
		require.NoError(t, err)
		assert.NotEmpty(t, state.Stage)
		assert.GreaterOrEqual(t, state.Health, 45.0)
		assert.LessOrEqual(t, state.Health, 95.0)
	}
}
