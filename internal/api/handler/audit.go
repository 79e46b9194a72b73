package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/service"
)

// AuditHandler handles audit log operations.
type AuditHandler struct {
	deps service.Deps
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(deps service.Deps) *AuditHandler {
	return &AuditHandler{deps: deps}
}

// GetDependencyHistory handles GET /dependencies/{id}/history.
func (h *AuditHandler) GetDependencyHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	svc := service.NewDependencyService(h.deps)
	entries, err := svc.History(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, entries)
}
