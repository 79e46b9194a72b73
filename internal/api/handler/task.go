package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/api/middleware"
	"github.com/tasktrack/tasktrack/internal/api/request"
	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/service"
)

// TaskHandler handles the task, user and board registry.
type TaskHandler struct {
	deps service.Deps
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(deps service.Deps) *TaskHandler {
	return &TaskHandler{deps: deps}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewTaskService(h.deps)
	task, err := svc.Create(r.Context(), req.Input(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, task)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	svc := service.NewTaskService(h.deps)
	task, err := svc.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, task)
}

// UpdateTask handles PATCH /tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req request.UpdateTaskRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewTaskService(h.deps)
	task, err := svc.Update(r.Context(), id, req.Input())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, task)
}

// UpsertUser handles POST /users.
func (h *TaskHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req request.UserRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewTaskService(h.deps)
	user, err := svc.UpsertUser(r.Context(), &domain.User{ID: req.ID, Name: req.Name, Email: req.Email})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, user)
}

// CreateBoard handles POST /boards.
func (h *TaskHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req request.BoardRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewTaskService(h.deps)
	board, err := svc.CreateBoard(r.Context(), &domain.Board{ID: req.ID, ProjectID: req.ProjectID, Name: req.Name})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, board)
}
