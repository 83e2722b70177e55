// Package core provides the HTTP chassis for the cropwatch API. It builds a
// chi router with the cross-cutting middleware (panic recovery, request IDs,
// structured request logging, token auth) and mounts the domain handlers for
// recommendations, tasks, and alerts.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cropwatch/internal/alerts"
	"cropwatch/internal/config"
	"cropwatch/internal/types"
)

// RecommendationService is the engine surface the handlers need. Satisfied
// by recommend.Engine.
type RecommendationService interface {
	GenerateFieldRecommendations(ctx context.Context, fieldID string, zones []types.ZoneMeasurement, forecast types.WeatherForecast) (*types.FieldRecommendation, error)
	Cached(fieldID string) (*types.FieldRecommendation, bool)
}

// RecommendationHistory reads stored recommendation documents. Satisfied by
// db.RecommendationRepository.
type RecommendationHistory interface {
	LatestByField(ctx context.Context, fieldID string) (*types.FieldRecommendation, error)
	ListByField(ctx context.Context, fieldID string, limit int) ([]*types.FieldRecommendation, error)
}

// TaskService is the task-manager surface the handlers need. Satisfied by
// tasks.Manager.
type TaskService interface {
	CreateTask(ctx context.Context, t *types.FarmerTask) (string, error)
	Task(ctx context.Context, taskID string) (*types.FarmerTask, error)
	TasksForFarmer(ctx context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error)
	UpdateStatus(ctx context.Context, taskID string, next types.TaskStatus, notes string) error
	OverdueTasks(ctx context.Context, fieldIDs []string) ([]*types.FarmerTask, error)
	UpcomingTasks(ctx context.Context, fieldIDs []string, daysAhead int) ([]*types.FarmerTask, error)
	TaskHistory(ctx context.Context, taskID string) ([]*types.TaskEvent, error)
	Summary(ctx context.Context, fieldIDs []string) (*types.TaskSummary, error)
	TasksFromRecommendation(ctx context.Context, fieldID string, rec *types.FieldRecommendation) ([]string, error)
	TasksFromWeather(ctx context.Context, fieldID string, forecast types.WeatherForecast) ([]string, error)
	TasksFromGrowthStage(ctx context.Context, fieldID string, stageLabel string, fieldHealth float64) ([]string, error)
}

// Server holds the API dependencies and the router.
type Server struct {
	Config          *config.Config
	Logger          *slog.Logger
	Recommendations RecommendationService
	History         RecommendationHistory
	Tasks           TaskService
	Dashboard       *alerts.Dashboard
	Measurements    types.ZoneMeasurementProvider
	Weather         types.WeatherProvider
	Crop            types.CropStateProvider
	Probes          []HealthProbe

	now    func() time.Time
	router *chi.Mux
}

// ServerConfig holds the dependencies for creating a Server.
type ServerConfig struct {
	Config          *config.Config
	Logger          *slog.Logger
	Recommendations RecommendationService
	History         RecommendationHistory
	Tasks           TaskService
	Dashboard       *alerts.Dashboard
	Measurements    types.ZoneMeasurementProvider
	Weather         types.WeatherProvider
	Crop            types.CropStateProvider
	Probes          []HealthProbe
	Now             func() time.Time
}

// NewServer builds the server and mounts its routes. It fails fast on
// missing critical dependencies.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if cfg.Recommendations == nil || cfg.Tasks == nil {
		return nil, fmt.Errorf("recommendation and task services must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		Config:          cfg.Config,
		Logger:          logger,
		Recommendations: cfg.Recommendations,
		History:         cfg.History,
		Tasks:           cfg.Tasks,
		Dashboard:       cfg.Dashboard,
		Measurements:    cfg.Measurements,
		Weather:         cfg.Weather,
		Crop:            cfg.Crop,
		Probes:          cfg.Probes,
		now:             now,
		router:          chi.NewRouter(),
	}
	s.mountRoutes()
	return s, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
