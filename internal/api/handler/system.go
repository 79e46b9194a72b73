package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/store"
)

// SystemHandler handles system-level operations.
type SystemHandler struct {
	manager *store.Manager
	log     logrus.FieldLogger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(manager *store.Manager, log logrus.FieldLogger) *SystemHandler {
	return &SystemHandler{manager: manager, log: log}
}

// Health handles GET /v1/health. It fails with 503 when the database does
// not answer.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.manager.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}

	response.OK(w, map[string]string{"status": "ok", "database": "up"})
}
