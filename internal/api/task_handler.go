package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// CreateTaskRequest represents the request body for submitting a new task
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required,min=3"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask handles POST /api/tasks requests. Processing happens
// asynchronously, so a successful submission returns 202 Accepted with
// the task in pending state.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), email, req.Description)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	id, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id, email)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /api/tasks requests
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), email)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list tasks")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RetryTask handles POST /api/tasks/{id}/retry requests
func (h *TaskHandler) RetryTask(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	id, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.RetryTask(r.Context(), id, email)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retry task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	id, err := taskIDFromURL(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id, email); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromURL parses the {id} route parameter.
func taskIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// taskToResponse converts a domain.Task to a TaskResponse. Stored
// results are JSON payloads and pass through unparsed.
func taskToResponse(task *domain.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Description: task.Description,
		Status:      string(task.Status),
		Type:        task.Type,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Result != nil {
		response.Result = json.RawMessage(*task.Result)
	}
	return response
}
