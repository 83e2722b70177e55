package agronomy

import "cropwatch/internal/types"

// FallbackStage is the stage assumed when an upstream label does not match
// any known growth stage. Vegetative growth carries the median water and
// nutrient demand, so it is the least damaging wrong guess.
const FallbackStage = types.StageVegetativeGrowth

// ParseGrowthStage parses a raw stage label from an upstream provider.
// The second return reports whether the label matched a known stage;
// callers that want the silent-fallback behavior use StageOrFallback.
func ParseGrowthStage(label string) (types.GrowthStage, bool) {
	s := types.GrowthStage(label)
	_, ok := stageRequirements[s]
	return s, ok
}

// StageOrFallback is the named coercion policy for upstream stage labels:
// unrecognized labels map to FallbackStage rather than failing the
// recommendation run.
func StageOrFallback(label string) types.GrowthStage {
	if s, ok := ParseGrowthStage(label); ok {
		return s
	}
	return FallbackStage
}
