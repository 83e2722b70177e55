package types

import "context"

// ZoneMeasurementProvider yields the current per-zone measurement rows for a
// field. Production implementations aggregate satellite indices and ML
// nutrient predictions; internal/sim provides a synthetic stand-in with the
// same contract.
type ZoneMeasurementProvider interface {
	ZoneMeasurements(ctx context.Context, fieldID string) ([]ZoneMeasurement, error)
}

// WeatherProvider yields the forecast used by recommendation generation and
// weather-alert task creation, and the current-conditions snapshot used by
// the alert scanner's suitability checks.
type WeatherProvider interface {
	Forecast(ctx context.Context, fieldID string) (WeatherForecast, error)
	Snapshot(ctx context.Context, fieldID string) (WeatherSnapshot, error)
}

// CropState is the growth-stage/field-health signal consumed by stage-based
// task generation. Stage is a raw label; unrecognized values fall back via
// the agronomy parse policy. Health is a percentage in [0,100].
type CropState struct {
	Stage  string  `json:"growth_stage"`
	Health float64 `json:"field_health"`
}

// CropStateProvider yields the current crop state for a field.
type CropStateProvider interface {
	CropState(ctx context.Context, fieldID string) (CropState, error)
}
