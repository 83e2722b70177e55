package core

import (
	"github.com/go-chi/chi/v5"
)

// mountRoutes registers the middleware chain and all endpoints. Middleware
// order matters: the recoverer is outermost, request IDs are assigned
// before logging, and auth guards only the /v1 namespace so health stays
// probeable.
func (s *Server) mountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.RequestLogger)

	s.router.Get("/health", s.HandleHealth)

	if s.Config.Server.APITokenHash.IsEmpty() {
		s.Logger.Warn("API token auth disabled; set API_TOKEN_HASH outside local development")
	}

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Route("/fields/{fieldID}", func(r chi.Router) {
			r.Post("/recommendations/generate", s.HandleGenerateRecommendations)
			r.Get("/recommendations/latest", s.HandleLatestRecommendation)
			r.Get("/recommendations/history", s.HandleRecommendationHistory)
			r.Get("/recommendations/export", s.HandleExportRecommendation)
			r.Get("/recommendations/schedule", s.HandleRecommendationSchedule)

			r.Post("/tasks/from-recommendation", s.HandleTasksFromRecommendation)
			r.Post("/tasks/from-weather", s.HandleTasksFromWeather)
			r.Post("/tasks/from-growth-stage", s.HandleTasksFromGrowthStage)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.HandleCreateTask)
			r.Get("/", s.HandleListTasks)
			r.Get("/summary", s.HandleTaskSummary)
			r.Get("/overdue", s.HandleOverdueTasks)
			r.Get("/upcoming", s.HandleUpcomingTasks)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.HandleGetTask)
				r.Post("/status", s.HandleUpdateTaskStatus)
				r.Get("/history", s.HandleTaskHistory)
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.HandleListAlerts)
			r.Get("/unread", s.HandleUnreadAlerts)
			r.Post("/{alertID}/read", s.HandleMarkAlertRead)
		})
	})
}
