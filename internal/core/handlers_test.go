package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/types"
)

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleGenerateRecommendations(t *testing.T) {
	s := newTestServer(t, &testDeps{})

	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-7/recommendations/generate", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec.Body.Bytes())
	data := out["data"].(map[string]any)
	assert.Equal(t, "field-7", data["field_id"])
}

func TestHandleGenerateRecommendationsPostedMeasurements(t *testing.T) {
	// Posted measurements bypass the providers entirely.
	s := newTestServer(t, &testDeps{
		zones: &fakeMeasurements{err: errors.New("provider must not be called")},
	})

	body := `{"zones":[{"zone_id":1,"area_ha":2.5,"growth_stage":"Vegetative_Growth"}],"weather_forecast":{"precipitation_7day":12}}`
	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-7/recommendations/generate", body)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleGenerateRecommendationsMeasurementFailure(t *testing.T) {
	s := newTestServer(t, &testDeps{
		zones: &fakeMeasurements{err: types.NewAppError(types.ErrCodeUpstreamProvider, "satellite feed down", nil)},
	})

	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-7/recommendations/generate", "")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	out := decodeBody(t, rec.Body.Bytes())
	errObj := out["error"].(map[string]any)
	assert.Equal(t, "upstream_provider_unavailable", errObj["code"])
	assert.NotEmpty(t, errObj["request_id"])
}

func TestHandleLatestRecommendation(t *testing.T) {
	cached := &types.FieldRecommendation{FieldID: "field-1", AnalysisDate: testNow}

	t.Run("cache hit skips storage", func(t *testing.T) {
		history := &fakeHistory{err: errors.New("must not be called")}
		s := newTestServer(t, &testDeps{
			recs:    &fakeRecService{cached: cached},
			history: history,
		})

		rec := doRequest(t, s, http.MethodGet, "/v1/fields/field-1/recommendations/latest", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cache miss reads storage", func(t *testing.T) {
		s := newTestServer(t, &testDeps{
			history: &fakeHistory{latest: cached},
		})

		rec := doRequest(t, s, http.MethodGet, "/v1/fields/field-1/recommendations/latest", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown field is 404", func(t *testing.T) {
		s := newTestServer(t, &testDeps{
			history: &fakeHistory{err: types.NewAppError(types.ErrCodeNotFoundField, "no recommendations for field", nil)},
		})

		rec := doRequest(t, s, http.MethodGet, "/v1/fields/nope/recommendations/latest", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleRecommendationHistoryLimit(t *testing.T) {
	history := &fakeHistory{}
	s := newTestServer(t, &testDeps{history: history})

	rec := doRequest(t, s, http.MethodGet, "/v1/fields/field-1/recommendations/history?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, history.gotLimit)
}

func TestHandleExportRecommendation(t *testing.T) {
	s := newTestServer(t, &testDeps{
		recs: &fakeRecService{cached: &types.FieldRecommendation{FieldID: "field-3", AnalysisDate: testNow}},
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/fields/field-3/recommendations/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recommendations_field-3.json")
	assert.Contains(t, rec.Body.String(), "field-3")
}

func TestHandleRecommendationSchedule(t *testing.T) {
	s := newTestServer(t, &testDeps{
		recs: &fakeRecService{cached: &types.FieldRecommendation{FieldID: "field-3", AnalysisDate: testNow}},
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/fields/field-3/recommendations/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCreateTask(t *testing.T) {
	var got *types.FarmerTask
	tasksSvc := &fakeTaskService{
		createFn: func(_ context.Context, task *types.FarmerTask) (string, error) {
			got = task
			return "task-42", nil
		},
	}
	s := newTestServer(t, &testDeps{tasks: tasksSvc})

	body := `{"title":"Irrigate zone 2","category":"irrigation","priority":"high","field_id":"field-1","due_date":"2026-04-20T06:00:00Z"}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tasks/", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Irrigate zone 2", got.Title)
	assert.Equal(t, types.CategoryIrrigation, got.Category)

	out := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "task-42", out["data"].(map[string]any)["id"])
}

func TestHandleCreateTaskRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"title":`},
		{name: "unknown field", body: `{"title":"x","bogus":true}`},
		{name: "empty body", body: ""},
		{name: "trailing value", body: `{"title":"x"}{"title":"y"}`},
	}
	s := newTestServer(t, &testDeps{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/v1/tasks/", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			out := decodeBody(t, rec.Body.Bytes())
			assert.Equal(t, "validation_invalid_json", out["error"].(map[string]any)["code"])
		})
	}
}

func TestHandleListTasksFilter(t *testing.T) {
	var got types.TaskFilter
	tasksSvc := &fakeTaskService{
		listFn: func(_ context.Context, filter types.TaskFilter) ([]*types.FarmerTask, error) {
			got = filter
			return []*types.FarmerTask{}, nil
		},
	}
	s := newTestServer(t, &testDeps{tasks: tasksSvc})

	rec := doRequest(t, s, http.MethodGet,
		"/v1/tasks/?field_id=field-1&field_id=field-2&status=pending&status=overdue&category=irrigation&priority=high", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"field-1", "field-2"}, got.FieldIDs)
	assert.Equal(t, []types.TaskStatus{types.TaskPending, types.TaskOverdue}, got.Statuses)
	assert.Equal(t, []types.TaskCategory{types.CategoryIrrigation}, got.Categories)
	assert.Equal(t, []types.TaskPriority{types.TaskPriorityHigh}, got.Priorities)
}

func TestHandleGetTask(t *testing.T) {
	s := newTestServer(t, &testDeps{})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/task-9/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "task-9", out["data"].(map[string]any)["id"])
}

func TestHandleGetTaskNotFound(t *testing.T) {
	s := newTestServer(t, &testDeps{
		tasks: &fakeTaskService{err: types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)},
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/nope/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdateTaskStatus(t *testing.T) {
	var gotStatus types.TaskStatus
	var gotNotes string
	tasksSvc := &fakeTaskService{
		updateFn: func(_ context.Context, _ string, next types.TaskStatus, notes string) error {
			gotStatus = next
			gotNotes = notes
			return nil
		},
	}
	s := newTestServer(t, &testDeps{tasks: tasksSvc})

	rec := doRequest(t, s, http.MethodPost, "/v1/tasks/task-1/status",
		`{"status":"in_progress","notes":"started after rain stopped"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.TaskInProgress, gotStatus)
	assert.Equal(t, "started after rain stopped", gotNotes)
}

func TestHandleUpdateTaskStatusConflict(t *testing.T) {
	s := newTestServer(t, &testDeps{
		tasks: &fakeTaskService{
			updateFn: func(context.Context, string, types.TaskStatus, string) error {
				return types.NewAppError(types.ErrCodeConflictTransition, "pending tasks cannot complete directly", nil)
			},
		},
	})

	rec := doRequest(t, s, http.MethodPost, "/v1/tasks/task-1/status", `{"status":"completed"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	out := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "conflict_invalid_status_transition", out["error"].(map[string]any)["code"])
}

func TestHandleTaskSummary(t *testing.T) {
	var gotFields []string
	tasksSvc := &fakeTaskService{
		summaryFn: func(_ context.Context, fieldIDs []string) (*types.TaskSummary, error) {
			gotFields = fieldIDs
			return &types.TaskSummary{TotalTasks: 3, Pending: 2, Overdue: 1}, nil
		},
	}
	s := newTestServer(t, &testDeps{tasks: tasksSvc})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/summary?field_id=field-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"field-1"}, gotFields)
	out := decodeBody(t, rec.Body.Bytes())
	assert.EqualValues(t, 3, out["data"].(map[string]any)["total_tasks"])
}

func TestHandleUpcomingTasksDays(t *testing.T) {
	tasksSvc := &fakeTaskService{}
	s := newTestServer(t, &testDeps{tasks: tasksSvc})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/upcoming?field_id=field-1&days=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, tasksSvc.gotDays)
}

func TestHandleOverdueTasks(t *testing.T) {
	s := newTestServer(t, &testDeps{
		tasks: &fakeTaskService{overdue: []*types.FarmerTask{{ID: "task-1", Status: types.TaskOverdue}}},
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/overdue?field_id=field-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task-1")
}

func TestHandleTaskHistory(t *testing.T) {
	s := newTestServer(t, &testDeps{
		tasks: &fakeTaskService{events: []*types.TaskEvent{{TaskID: "task-1", EventType: types.TaskEventCreated}}},
	})

	rec := doRequest(t, s, http.MethodGet, "/v1/tasks/task-1/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), types.TaskEventCreated)
}

func TestHandleTasksFromRecommendation(t *testing.T) {
	s := newTestServer(t, &testDeps{
		recs:  &fakeRecService{cached: &types.FieldRecommendation{FieldID: "field-1", AnalysisDate: testNow}},
		tasks: &fakeTaskService{fromIDs: []string{"task-1", "task-2"}},
	})

	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-1/tasks/from-recommendation", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeBody(t, rec.Body.Bytes())
	assert.Len(t, out["data"].(map[string]any)["task_ids"], 2)
}

func TestHandleTasksFromWeather(t *testing.T) {
	s := newTestServer(t, &testDeps{
		tasks: &fakeTaskService{fromIDs: []string{"task-1"}},
	})

	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-1/tasks/from-weather", "")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleTasksFromGrowthStage(t *testing.T) {
	s := newTestServer(t, &testDeps{
		crop:  &fakeCrop{state: types.CropState{Stage: "flowering", Health: 55}},
		tasks: &fakeTaskService{fromIDs: []string{"task-1"}},
	})

	rec := doRequest(t, s, http.MethodPost, "/v1/fields/field-1/tasks/from-growth-stage", "")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	s := newTestServer(t, &testDeps{})
	id := s.Dashboard.Record(types.AlertOverdue, types.AlertMessage{Title: "Overdue: irrigate"}, testNow)

	rec := doRequest(t, s, http.MethodGet, "/v1/alerts/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Overdue: irrigate")

	rec = doRequest(t, s, http.MethodGet, "/v1/alerts/unread", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec.Body.Bytes())["data"].(map[string]any)["unread"])

	rec = doRequest(t, s, http.MethodPost, "/v1/alerts/"+id+"/read", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/v1/alerts/unread", "")
	assert.EqualValues(t, 0, decodeBody(t, rec.Body.Bytes())["data"].(map[string]any)["unread"])
}

func TestHandleMarkAlertReadNotFound(t *testing.T) {
	s := newTestServer(t, &testDeps{})

	rec := doRequest(t, s, http.MethodPost, "/v1/alerts/missing/read", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	t.Run("no probes", func(t *testing.T) {
		s := newTestServer(t, &testDeps{})

		rec := doRequest(t, s, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("all healthy", func(t *testing.T) {
		s := newTestServer(t, &testDeps{
			probes: []HealthProbe{fakeProbe{name: "database"}, fakeProbe{name: "weather"}},
		})

		rec := doRequest(t, s, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		s := newTestServer(t, &testDeps{
			probes: []HealthProbe{
				fakeProbe{name: "database"},
				fakeProbe{name: "weather", err: errors.New("connection refused")},
			},
		})

		rec := doRequest(t, s, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})
}
