package types

// Defaults applied when a forecast field is absent. Each consumer documents
// which default it uses; water-stress assessment and irrigation sizing
// deliberately differ on the precipitation default.
const (
	DefaultPrecip7DayStress  = 10.0 // mm, used by water-stress assessment
	DefaultPrecip7DayNet     = 0.0  // mm, used by net irrigation requirement
	DefaultMaxTemp7Day       = 25.0 // Celsius
	DefaultAvgTemp7Day       = 20.0 // Celsius
	DefaultAvgHumidity7Day   = 65.0 // percent
	DefaultWindSpeed         = 0.0  // km/h
	DefaultMinTemperature    = 10.0 // Celsius
	DefaultPrecipitationEach = 0.0  // mm, single-event precipitation
)

// WeatherForecast is the forecast contract consumed by the recommendation
// engine and the weather-alert task generation. All fields are optional;
// accessors take the caller's documented default so missing data degrades
// rather than fails.
type WeatherForecast struct {
	Precip7Day    *float64 `json:"precipitation_7day,omitempty"`
	MaxTemp7Day   *float64 `json:"max_temperature_7day,omitempty"`
	AvgTemp7Day   *float64 `json:"avg_temperature_7day,omitempty"`
	AvgHumidity7D *float64 `json:"avg_humidity_7day,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	MinTemp       *float64 `json:"min_temperature,omitempty"`
	Precipitation *float64 `json:"precipitation,omitempty"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Precip7DayOr returns the 7-day precipitation forecast or def when absent.
func (w WeatherForecast) Precip7DayOr(def float64) float64 { return orDefault(w.Precip7Day, def) }

// MaxTemp7DayOr returns the 7-day maximum temperature or def when absent.
func (w WeatherForecast) MaxTemp7DayOr(def float64) float64 { return orDefault(w.MaxTemp7Day, def) }

// AvgTemp7DayOr returns the 7-day average temperature or def when absent.
func (w WeatherForecast) AvgTemp7DayOr(def float64) float64 { return orDefault(w.AvgTemp7Day, def) }

// AvgHumidity7DayOr returns the 7-day average humidity or def when absent.
func (w WeatherForecast) AvgHumidity7DayOr(def float64) float64 {
	return orDefault(w.AvgHumidity7D, def)
}

// WindSpeedOr returns the forecast wind speed or def when absent.
func (w WeatherForecast) WindSpeedOr(def float64) float64 { return orDefault(w.WindSpeed, def) }

// MinTempOr returns the forecast minimum temperature or def when absent.
func (w WeatherForecast) MinTempOr(def float64) float64 { return orDefault(w.MinTemp, def) }

// PrecipitationOr returns the single-event precipitation or def when absent.
func (w WeatherForecast) PrecipitationOr(def float64) float64 {
	return orDefault(w.Precipitation, def)
}

// Float is a convenience constructor for optional forecast and measurement
// fields.
func Float(v float64) *float64 { return &v }

// WeatherSnapshot is the current-conditions contract used by the alert
// scanner's weather-suitability checks.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	PrecipProb  float64 `json:"precipitation_probability"`
	Conditions  string  `json:"conditions,omitempty"`
}
