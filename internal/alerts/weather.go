package alerts

import (
	"cropwatch/internal/types"
)

// WeatherSuitable reports whether current conditions favor executing a task
// of the given category. Categories without a defined predicate are always
// considered suitable.
func WeatherSuitable(category types.TaskCategory, w types.WeatherSnapshot) bool {
	switch category {
	case types.CategoryIrrigation:
		return w.PrecipProb < 30
	case types.CategoryFertilization:
		return w.WindSpeed < 20 && w.PrecipProb < 20
	case types.CategoryPestControl:
		return w.WindSpeed < 15 && w.PrecipProb < 10
	case types.CategoryHarvesting:
		return w.PrecipProb < 10
	default:
		return true
	}
}

// WeatherUnsuitable reports whether current conditions argue for postponing
// a task of the given category. Categories without a defined predicate are
// never unsuitable.
func WeatherUnsuitable(category types.TaskCategory, w types.WeatherSnapshot) bool {
	switch category {
	case types.CategoryIrrigation:
		return w.PrecipProb > 70
	case types.CategoryFertilization:
		return w.WindSpeed > 30 || w.PrecipProb > 60
	case types.CategoryPestControl:
		return w.WindSpeed > 25 || w.PrecipProb > 50
	case types.CategoryHarvesting:
		return w.PrecipProb > 40
	default:
		return false
	}
}
