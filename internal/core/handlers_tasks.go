package core

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cropwatch/internal/types"
)

// HandleCreateTask creates one manually-entered task.
func (s *Server) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task types.FarmerTask
	if err := DecodeJSON(w, r, &task); err != nil {
		Error(w, r, err)
		return
	}

	id, err := s.Tasks.CreateTask(r.Context(), &task)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusCreated, APIResponse{Data: map[string]string{"id": id}})
}

// HandleGetTask serves one task by ID.
func (s *Server) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.Tasks.Task(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: task})
}

// HandleListTasks serves tasks filtered by the query parameters. field_id
// is required and repeatable; status, category, and priority narrow further.
func (s *Server) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := taskFilterFromQuery(r)

	list, err := s.Tasks.TasksForFarmer(r.Context(), filter)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: list})
}

// statusUpdateRequest is the body for task status transitions.
type statusUpdateRequest struct {
	Status types.TaskStatus `json:"status"`
	Notes  string           `json:"notes"`
}

// HandleUpdateTaskStatus applies one lifecycle transition.
func (s *Server) HandleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if err := s.Tasks.UpdateStatus(r.Context(), taskID, req.Status, req.Notes); err != nil {
		Error(w, r, err)
		return
	}

	task, err := s.Tasks.Task(r.Context(), taskID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: task})
}

// HandleTaskHistory serves a task's audit trail, oldest first.
func (s *Server) HandleTaskHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.Tasks.TaskHistory(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: events})
}

// HandleTaskSummary serves the dashboard rollup for a field set.
func (s *Server) HandleTaskSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Tasks.Summary(r.Context(), r.URL.Query()["field_id"])
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: summary})
}

// HandleOverdueTasks serves overdue tasks, reconciling statuses first.
func (s *Server) HandleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.Tasks.OverdueTasks(r.Context(), r.URL.Query()["field_id"])
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: list})
}

// HandleUpcomingTasks serves tasks due within the requested window.
func (s *Server) HandleUpcomingTasks(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	list, err := s.Tasks.UpcomingTasks(r.Context(), r.URL.Query()["field_id"], days)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: list})
}

// HandleTasksFromRecommendation converts the field's current recommendation
// into actionable tasks.
func (s *Server) HandleTasksFromRecommendation(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	rec, err := s.latestRecommendation(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	ids, err := s.Tasks.TasksFromRecommendation(r.Context(), fieldID, rec)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusCreated, APIResponse{Data: map[string]any{"task_ids": ids}})
}

// HandleTasksFromWeather creates preventive tasks for forecast extremes.
func (s *Server) HandleTasksFromWeather(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	forecast, err := s.Weather.Forecast(r.Context(), fieldID)
	if err != nil {
		Error(w, r, err)
		return
	}

	ids, err := s.Tasks.TasksFromWeather(r.Context(), fieldID, forecast)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusCreated, APIResponse{Data: map[string]any{"task_ids": ids}})
}

// HandleTasksFromGrowthStage creates the stage-template tasks for the
// field's current crop state.
func (s *Server) HandleTasksFromGrowthStage(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	state, err := s.Crop.CropState(r.Context(), fieldID)
	if err != nil {
		Error(w, r, err)
		return
	}

	ids, err := s.Tasks.TasksFromGrowthStage(r.Context(), fieldID, state.Stage, state.Health)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusCreated, APIResponse{Data: map[string]any{"task_ids": ids}})
}

// taskFilterFromQuery builds a TaskFilter from repeatable query parameters.
func taskFilterFromQuery(r *http.Request) types.TaskFilter {
	q := r.URL.Query()
	filter := types.TaskFilter{FieldIDs: q["field_id"]}
	for _, v := range q["status"] {
		filter.Statuses = append(filter.Statuses, types.TaskStatus(v))
	}
	for _, v := range q["category"] {
		filter.Categories = append(filter.Categories, types.TaskCategory(v))
	}
	for _, v := range q["priority"] {
		filter.Priorities = append(filter.Priorities, types.TaskPriority(v))
	}
	return filter
}
