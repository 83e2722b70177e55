package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/types"
)

func TestBuildScheduleOrdering(t *testing.T) {
	base := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	rec := &types.FieldRecommendation{
		Zones: []types.ZoneRecommendation{
			{
				ZoneID: 1,
				AreaHa: 2.0,
				Actions: []types.RecommendationAction{
					{
						ActionType: types.ActionFertilization,
						Priority:   types.PriorityMedium,
						Timing:     types.TimingWithinWeek,
					},
					{
						ActionType: types.ActionIrrigation,
						Priority:   types.PriorityHigh,
						Timing:     types.TimingImmediate,
					},
				},
			},
			{
				ZoneID: 2,
				AreaHa: 1.0,
				Actions: []types.RecommendationAction{
					{
						ActionType: types.ActionPestManagement,
						Priority:   types.PriorityHigh,
						Timing:     types.TimingWithinWeek,
					},
					{
						ActionType: types.ActionFertilization,
						Priority:   types.PriorityLow,
						Timing:     types.TimingWithinMonth,
					},
				},
			},
		},
	}

	schedule := BuildSchedule(rec, base, 30)
	require.Len(t, schedule, 4)

	// Date ascending, then priority descending within a date.
	assert.Equal(t, base, schedule[0].Date)
	assert.Equal(t, types.ActionIrrigation, schedule[0].ActionType)

	assert.Equal(t, base.AddDate(0, 0, 3), schedule[1].Date)
	assert.Equal(t, types.PriorityHigh, schedule[1].Priority)
	assert.Equal(t, 2, schedule[1].ZoneID)

	assert.Equal(t, base.AddDate(0, 0, 3), schedule[2].Date)
	assert.Equal(t, types.PriorityMedium, schedule[2].Priority)

	assert.Equal(t, base.AddDate(0, 0, 14), schedule[3].Date)
}

func TestBuildScheduleHorizonExcludesLateActions(t *testing.T) {
	base := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	rec := &types.FieldRecommendation{
		Zones: []types.ZoneRecommendation{{
			ZoneID: 1,
			Actions: []types.RecommendationAction{
				{ActionType: types.ActionIrrigation, Timing: types.TimingImmediate},
				{ActionType: types.ActionFertilization, Timing: types.TimingWithinMonth},
			},
		}},
	}

	schedule := BuildSchedule(rec, base, 7)
	require.Len(t, schedule, 1)
	assert.Equal(t, types.ActionIrrigation, schedule[0].ActionType)
}

func TestBuildScheduleUnknownTimingDefaults(t *testing.T) {
	base := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	rec := &types.FieldRecommendation{
		Zones: []types.ZoneRecommendation{{
			ZoneID: 1,
			Actions: []types.RecommendationAction{
				{ActionType: types.ActionIrrigation, Timing: types.Timing("someday")},
			},
		}},
	}

	schedule := BuildSchedule(rec, base, 30)
	require.Len(t, schedule, 1)
	assert.Equal(t, base.AddDate(0, 0, 7), schedule[0].Date)
}

func TestBuildScheduleEmpty(t *testing.T) {
	base := time.Now()
	assert.Empty(t, BuildSchedule(&types.FieldRecommendation{}, base, 30))
}
