package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/api/middleware"
	"github.com/mihirk/taskman-api/internal/api/shared"
	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/logger"
	"github.com/mihirk/taskman-api/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks requests.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid task create body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := domain.NewTask(user.ID, req.Description, req.Completed)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// List handles GET /tasks requests.
//
//	GET /tasks?completed=true
//	GET /tasks?limit=10&skip=10
//	GET /tasks?sortBy=createdAt:desc
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	opts := parseListOptions(r)

	tasks, err := h.taskStore.List(r.Context(), user.ID, opts)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Get handles GET /tasks/{id} requests. A task belonging to someone else
// reads the same as one that does not exist.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	task, err := h.taskStore.GetByOwnerAndID(r.Context(), user.ID, taskID)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Update handles PATCH /tasks/{id} requests. The body is decoded strictly:
// any key outside description and completed fails the whole request. An
// absent or unowned task answers 400 here, unlike Get and Delete.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSONStrict(r, &req); err != nil {
		log.Debug("rejected task update", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, InvalidUpdatesMessage)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task not found")
		return
	}

	task, err := h.taskStore.GetByOwnerAndID(r.Context(), user.ID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Task not found")
			return
		}
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	// A body with no recognized fields is a no-op on the fetched task.
	if req.IsEmpty() {
		shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
		return
	}

	if req.Description != nil {
		if err := domain.ValidateDescription(*req.Description); err != nil {
			status, message := HandleAPIError(err)
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /tasks/{id} requests.
// The response echoes the deleted task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	task, err := h.taskStore.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// parseListOptions extracts the listing query parameters. Malformed values
// are ignored rather than rejected, so a bad limit just means no limit.
func parseListOptions(r *http.Request) store.ListTasksOptions {
	var opts store.ListTasksOptions
	q := r.URL.Query()

	if completed := q.Get("completed"); completed != "" {
		value := completed == "true"
		opts.Completed = &value
	}

	if sortBy := q.Get("sortBy"); sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)
		opts.SortField = parts[0]
		opts.SortDescending = len(parts) == 2 && parts[1] == "desc"
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if skip, err := strconv.Atoi(q.Get("skip")); err == nil {
		opts.Skip = skip
	}

	return opts
}
