package core

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cropwatch/internal/recommend"
	"cropwatch/internal/types"
)

// defaultScheduleDays is the planning horizon for the action schedule.
const defaultScheduleDays = 14

// generateRequest optionally carries caller-supplied measurements. An empty
// body falls back to the configured providers.
type generateRequest struct {
	Zones    []types.ZoneMeasurement `json:"zones"`
	Forecast types.WeatherForecast   `json:"weather_forecast"`
}

// HandleGenerateRecommendations runs a fresh field analysis: zone
// measurements plus the weather forecast through the recommendation engine.
// Measurements come from the request body when posted, otherwise from the
// configured providers.
func (s *Server) HandleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")
	ctx := r.Context()

	var zones []types.ZoneMeasurement
	var forecast types.WeatherForecast

	if r.ContentLength > 0 {
		var req generateRequest
		if err := DecodeJSON(w, r, &req); err != nil {
			Error(w, r, err)
			return
		}
		zones, forecast = req.Zones, req.Forecast
	} else {
		var err error
		zones, err = s.Measurements.ZoneMeasurements(ctx, fieldID)
		if err != nil {
			Error(w, r, err)
			return
		}
		forecast, err = s.Weather.Forecast(ctx, fieldID)
		if err != nil {
			Error(w, r, err)
			return
		}
	}

	rec, err := s.Recommendations.GenerateFieldRecommendations(ctx, fieldID, zones, forecast)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: rec})
}

// HandleLatestRecommendation serves the cached recommendation when fresh,
// falling back to the newest stored document.
func (s *Server) HandleLatestRecommendation(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	if rec, ok := s.Recommendations.Cached(fieldID); ok {
		JSON(w, r, http.StatusOK, APIResponse{Data: rec})
		return
	}

	rec, err := s.History.LatestByField(r.Context(), fieldID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: rec})
}

// HandleRecommendationHistory serves stored recommendations, newest first.
// The limit query parameter caps the page size.
func (s *Server) HandleRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := s.History.ListByField(r.Context(), fieldID, limit)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: recs})
}

// HandleExportRecommendation serves the latest recommendation as a
// downloadable JSON document.
func (s *Server) HandleExportRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.latestRecommendation(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	data, err := recommend.Export(rec)
	if err != nil {
		Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="recommendations_`+rec.FieldID+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRecommendationSchedule serves the forward-looking action schedule
// derived from the latest recommendation. The days query parameter sets the
// horizon.
func (s *Server) HandleRecommendationSchedule(w http.ResponseWriter, r *http.Request) {
	rec, err := s.latestRecommendation(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = defaultScheduleDays
	}

	schedule := recommend.BuildSchedule(rec, s.now().UTC(), days)
	JSON(w, r, http.StatusOK, APIResponse{Data: schedule})
}

// latestRecommendation resolves the field's current recommendation, cache
// first.
func (s *Server) latestRecommendation(r *http.Request) (*types.FieldRecommendation, error) {
	fieldID := chi.URLParam(r, "fieldID")
	if rec, ok := s.Recommendations.Cached(fieldID); ok {
		return rec, nil
	}
	return s.History.LatestByField(r.Context(), fieldID)
}
