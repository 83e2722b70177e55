package recommend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cropwatch/internal/agronomy"
	"cropwatch/internal/types"
)

// Economic model constants for ROI estimation.
const (
	// baseYieldTonnesPerHa is the assumed potato yield without intervention.
	baseYieldTonnesPerHa = 25.0
	// pricePerTonne is the assumed farm-gate price per tonne.
	pricePerTonne = 300.0
	// maxYieldImpact caps the additive per-zone yield improvement estimate.
	maxYieldImpact = 0.40
)

// Yield-impact contributions per action kind and severity.
const (
	impactIrrigationHigh   = 0.12
	impactIrrigationOther  = 0.08
	impactFertilizerSevere = 0.20
	impactFertilizerMild   = 0.10
	impactFertilizerOther  = 0.05
	impactPestHigh         = 0.15
	impactPestOther        = 0.05
)

// HistoryStore persists generated field recommendations for later review.
// Persistence is best-effort: a store failure degrades the audit trail, not
// the recommendation call.
type HistoryStore interface {
	SaveFieldRecommendation(ctx context.Context, rec *types.FieldRecommendation) error
}

// Engine generates field-level recommendations. Zone computation is pure
// (reference tables plus inputs only), so zones are evaluated in parallel.
type Engine struct {
	cache   Cache
	history HistoryStore
	logger  *slog.Logger
	now     func() time.Time
}

// EngineConfig holds the dependencies for creating an Engine. Cache and
// History may be nil; Logger defaults to slog.Default.
type EngineConfig struct {
	Cache   Cache
	History HistoryStore
	Logger  *slog.Logger
	Now     func() time.Time
}

// NewEngine creates a recommendation Engine.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cache:   cfg.Cache,
		history: cfg.History,
		logger:  logger,
		now:     now,
	}
}

// GenerateFieldRecommendations runs assessment and all action generators for
// every zone, aggregates cost and yield impact, and computes the field
// summary and ROI. Missing measurements degrade to defaults; the only error
// class that propagates is a reference-table configuration gap.
func (e *Engine) GenerateFieldRecommendations(
	ctx context.Context,
	fieldID string,
	zones []types.ZoneMeasurement,
	forecast types.WeatherForecast,
) (*types.FieldRecommendation, error) {
	zoneRecs := make([]types.ZoneRecommendation, len(zones))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range zones {
		g.Go(func() error {
			rec, err := e.generateZone(gctx, m, forecast)
			if err != nil {
				return err
			}
			zoneRecs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalCost := 0.0
	for _, z := range zoneRecs {
		totalCost += z.TotalCost
	}

	rec := &types.FieldRecommendation{
		FieldID:      fieldID,
		AnalysisDate: e.now().UTC(),
		Zones:        zoneRecs,
		Summary:      fieldSummary(zoneRecs),
		TotalCost:    totalCost,
		ExpectedROI:  estimateROI(zoneRecs, totalCost),
	}

	if e.history != nil {
		if err := e.history.SaveFieldRecommendation(ctx, rec); err != nil {
			e.logger.ErrorContext(ctx, "failed to persist recommendation history",
				"field_id", fieldID,
				"error", err,
			)
		}
	}
	if e.cache != nil {
		e.cache.Put(fieldID, rec)
	}

	e.logger.InfoContext(ctx, "generated field recommendations",
		"field_id", fieldID,
		"zones", len(zoneRecs),
		"total_cost", totalCost,
		"expected_roi", rec.ExpectedROI,
	)

	return rec, nil
}

// Cached returns the cached recommendation for a field if present and fresh.
func (e *Engine) Cached(fieldID string) (*types.FieldRecommendation, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(fieldID)
}

// generateZone produces the full recommendation bundle for one zone.
func (e *Engine) generateZone(
	_ context.Context,
	m types.ZoneMeasurement,
	forecast types.WeatherForecast,
) (types.ZoneRecommendation, error) {
	stage := agronomy.StageOrFallback(m.GrowthStage)
	req, err := agronomy.RequirementFor(stage)
	if err != nil {
		return types.ZoneRecommendation{}, err
	}

	health := agronomy.AssessHealth(m)
	nutrientStatus, err := agronomy.AssessNutrients(m)
	if err != nil {
		return types.ZoneRecommendation{}, err
	}
	stress, err := agronomy.StressIndicators(m, forecast)
	if err != nil {
		return types.ZoneRecommendation{}, err
	}

	actions := irrigationActions(m, stage, req, forecast, stress)
	fert, err := fertilizerActions(m, stage, req, nutrientStatus)
	if err != nil {
		return types.ZoneRecommendation{}, err
	}
	actions = append(actions, fert...)
	actions = append(actions, pestActions(m, stage, forecast)...)

	totalCost := 0.0
	for _, a := range actions {
		totalCost += a.Cost()
	}

	return types.ZoneRecommendation{
		ZoneID:           m.ZoneID,
		AreaHa:           m.AreaHa,
		GrowthStage:      m.GrowthStage,
		HealthStatus:     health,
		NutrientStatus:   nutrientStatus,
		StressIndicators: stress,
		Actions:          actions,
		YieldImpact:      estimateYieldImpact(actions),
		TotalCost:        totalCost,
	}, nil
}

// estimateYieldImpact sums the per-action yield contributions, saturating at
// maxYieldImpact. Fertilization severity is inferred from the action
// description; "severe_deficiency" must be checked before "deficiency"
// since the former contains the latter.
func estimateYieldImpact(actions []types.RecommendationAction) float64 {
	total := 0.0
	for _, a := range actions {
		switch a.ActionType {
		case types.ActionIrrigation:
			if a.Priority == types.PriorityHigh {
				total += impactIrrigationHigh
			} else {
				total += impactIrrigationOther
			}
		case types.ActionFertilization:
			switch {
			case strings.Contains(a.Description, string(types.NutrientSevereDeficiency)):
				total += impactFertilizerSevere
			case strings.Contains(a.Description, string(types.NutrientDeficiency)):
				total += impactFertilizerMild
			default:
				total += impactFertilizerOther
			}
		case types.ActionPestManagement:
			if a.Priority == types.PriorityHigh {
				total += impactPestHigh
			} else {
				total += impactPestOther
			}
		}
	}
	if total > maxYieldImpact {
		return maxYieldImpact
	}
	return total
}

// fieldSummary aggregates per-zone results for the dashboard.
func fieldSummary(zones []types.ZoneRecommendation) types.FieldSummary {
	s := types.FieldSummary{
		TotalZones:         len(zones),
		HealthDistribution: make(map[types.HealthStatus]int),
	}

	impactSum := 0.0
	for _, z := range zones {
		s.TotalAreaHa += z.AreaHa
		s.HealthDistribution[z.HealthStatus]++
		impactSum += z.YieldImpact
		if z.HealthStatus == types.HealthPoor || z.HealthStatus == types.HealthFair {
			s.ZonesNeedingAttention++
		}
		for _, a := range z.Actions {
			if a.Priority == types.PriorityHigh {
				s.HighPriorityActions++
			}
		}
	}
	if len(zones) > 0 {
		s.AverageYieldImpact = impactSum / float64(len(zones))
	}
	return s
}

// estimateROI computes the percentage return on the recommended spend from
// the expected yield improvement. Zero-cost plans short-circuit to 0 and
// negative returns are floored at 0.
func estimateROI(zones []types.ZoneRecommendation, totalCost float64) float64 {
	if totalCost == 0 || len(zones) == 0 {
		return 0
	}

	totalArea := 0.0
	impactSum := 0.0
	for _, z := range zones {
		totalArea += z.AreaHa
		impactSum += z.YieldImpact
	}
	avgImpact := impactSum / float64(len(zones))

	baseYieldValue := totalArea * baseYieldTonnesPerHa * pricePerTonne
	roi := ((baseYieldValue * avgImpact) - totalCost) / totalCost * 100
	if roi < 0 {
		return 0
	}
	return roi
}
