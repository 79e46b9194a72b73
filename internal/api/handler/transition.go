package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/api/request"
	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/service"
)

// TransitionHandler checks task status changes against their dependencies.
type TransitionHandler struct {
	deps service.Deps
}

// NewTransitionHandler creates a new TransitionHandler.
func NewTransitionHandler(deps service.Deps) *TransitionHandler {
	return &TransitionHandler{deps: deps}
}

// ValidateTransition handles POST /dependencies/tasks/{taskId}/validate.
// A blocked transition is a 200 with valid=false.
func (h *TransitionHandler) ValidateTransition(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	var req request.ValidateTransitionRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewDependencyService(h.deps)
	check, err := svc.ValidateTaskTransition(r.Context(), taskID, domain.TaskStatus(req.NewStatus))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, check)
}
