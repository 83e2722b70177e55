package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/types"
)

// Forecast thresholds for weather-alert task generation. Each check is
// independent; one forecast can fire all three.
const (
	highWindKMH = 40.0
	frostTempC  = 2.0
	heavyRainMM = 50.0
)

// weatherAlertTasks derives alert tasks from forecast thresholds. Absent
// forecast fields use defaults that keep the corresponding check quiet.
func weatherAlertTasks(fieldID string, forecast types.WeatherForecast, now time.Time) []*types.FarmerTask {
	var created []*types.FarmerTask

	if wind := forecast.WindSpeedOr(types.DefaultWindSpeed); wind > highWindKMH {
		created = append(created, &types.FarmerTask{
			ID:    uuid.NewString(),
			Title: "High Wind Alert",
			Description: fmt.Sprintf(
				"High winds expected (%.0f km/h). Secure equipment and check irrigation systems.", wind),
			Category:         types.CategoryWeatherAlert,
			Priority:         types.TaskPriorityHigh,
			Status:           types.TaskPending,
			FieldID:          fieldID,
			CreatedAt:        now,
			DueDate:          now.Add(6 * time.Hour),
			EstimatedMins:    30,
			AutoGenerated:    true,
			AIConfidence:     0.95,
			WeatherDependent: true,
			RiskFactors:      types.StringList{"equipment_damage", "irrigation_disruption"},
		})
	}

	if minTemp := forecast.MinTempOr(types.DefaultMinTemperature); minTemp < frostTempC {
		created = append(created, &types.FarmerTask{
			ID:    uuid.NewString(),
			Title: "Frost Warning",
			Description: fmt.Sprintf(
				"Frost risk with temperature dropping to %.0f°C. Protect vulnerable crops.", minTemp),
			Category:         types.CategoryWeatherAlert,
			Priority:         types.TaskPriorityUrgent,
			Status:           types.TaskPending,
			FieldID:          fieldID,
			CreatedAt:        now,
			DueDate:          now.Add(12 * time.Hour),
			EstimatedMins:    60,
			CostEstimate:     500.0,
			AutoGenerated:    true,
			AIConfidence:     0.98,
			WeatherDependent: true,
			EquipmentNeeded:  types.StringList{"frost_protection_covers", "irrigation_system"},
			RiskFactors:      types.StringList{"crop_damage", "yield_loss"},
		})
	}

	if precip := forecast.PrecipitationOr(types.DefaultPrecipitationEach); precip > heavyRainMM {
		created = append(created, &types.FarmerTask{
			ID:    uuid.NewString(),
			Title: "Heavy Rain Alert",
			Description: fmt.Sprintf(
				"Heavy rainfall expected (%.0fmm). Check drainage and postpone field operations.", precip),
			Category:         types.CategoryWeatherAlert,
			Priority:         types.TaskPriorityMedium,
			Status:           types.TaskPending,
			FieldID:          fieldID,
			CreatedAt:        now,
			DueDate:          now.Add(8 * time.Hour),
			EstimatedMins:    45,
			AutoGenerated:    true,
			AIConfidence:     0.90,
			WeatherDependent: true,
			RiskFactors:      types.StringList{"waterlogging", "soil_compaction"},
		})
	}

	return created
}
