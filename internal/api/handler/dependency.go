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

// DependencyHandler handles dependency operations.
type DependencyHandler struct {
	deps service.Deps
}

// NewDependencyHandler creates a new DependencyHandler.
func NewDependencyHandler(deps service.Deps) *DependencyHandler {
	return &DependencyHandler{deps: deps}
}

// CreateDependency handles POST /dependencies.
func (h *DependencyHandler) CreateDependency(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDependencyRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewDependencyService(h.deps)
	dep, err := svc.Create(r.Context(), req.Input(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, dep)
}

// ListTaskDependencies handles GET /dependencies/tasks/{taskId}.
func (h *DependencyHandler) ListTaskDependencies(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	direction := domain.Direction(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = domain.DirectionBoth
	}
	if !direction.IsValid() {
		response.Error(w, domain.NewValidationError([]string{"direction must be one of predecessor, successor, both"}))
		return
	}

	svc := service.NewDependencyService(h.deps)
	result, err := svc.ListForTask(r.Context(), taskID, direction)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

// UpdateDependency handles PUT /dependencies/{id}.
func (h *DependencyHandler) UpdateDependency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req request.UpdateDependencyRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewDependencyService(h.deps)
	dep, err := svc.Update(r.Context(), id, req.Input(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, dep)
}

// DeleteDependency handles DELETE /dependencies/{id}.
func (h *DependencyHandler) DeleteDependency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	svc := service.NewDependencyService(h.deps)
	if err := svc.Delete(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}

// ListProjectDependencies handles GET /dependencies/projects/{projectId}.
func (h *DependencyHandler) ListProjectDependencies(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	includeInactive := request.ParseBool(r, "includeInactive")

	svc := service.NewDependencyService(h.deps)
	deps, err := svc.ListForProject(r.Context(), projectID, includeInactive)
	if err != nil {
		response.Error(w, err)
		return
	}

	if deps == nil {
		deps = []*domain.Dependency{}
	}

	response.OK(w, deps)
}

// CheckCircular handles POST /dependencies/check-circular.
func (h *DependencyHandler) CheckCircular(w http.ResponseWriter, r *http.Request) {
	var req request.CheckCircularRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewDependencyService(h.deps)
	response.OK(w, svc.CheckCircular(r.Context(), req.PredecessorTaskID, req.SuccessorTaskID))
}

// Chain handles GET /dependencies/tasks/{taskId}/chain.
func (h *DependencyHandler) Chain(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	direction := domain.ChainDirection(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = domain.ChainForward
	}
	if !direction.IsValid() {
		response.Error(w, domain.NewValidationError([]string{"direction must be one of forward, backward"}))
		return
	}

	svc := service.NewDependencyService(h.deps)
	chain, err := svc.Chain(r.Context(), taskID, direction)
	if err != nil {
		response.Error(w, err)
		return
	}

	if chain == nil {
		chain = []*domain.Dependency{}
	}

	response.OK(w, chain)
}
