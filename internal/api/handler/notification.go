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

// NotificationHandler handles dependency notifications and preferences.
type NotificationHandler struct {
	deps service.Deps
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(deps service.Deps) *NotificationHandler {
	return &NotificationHandler{deps: deps}
}

// PreferencesResponse is a stored preference row and whether it came from
// the cache.
type PreferencesResponse struct {
	Preferences *domain.NotificationPreference `json:"preferences"`
	FromCache   bool                           `json:"fromCache"`
}

// Notify handles POST /dependencies/{id}/notify.
func (h *NotificationHandler) Notify(w http.ResponseWriter, r *http.Request) {
	dependencyID := chi.URLParam(r, "id")

	var req request.NotifyRequest
	if !decode(w, r, &req) {
		return
	}

	svc := service.NewNotificationService(h.deps)
	n, err := svc.Notify(r.Context(), dependencyID, req.Input())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, n)
}

// History handles GET /dependencies/{id}/notifications.
func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	dependencyID := chi.URLParam(r, "id")
	p := request.ParsePagination(r, service.DefaultHistoryLimit)

	svc := service.NewNotificationService(h.deps)
	items, total, err := svc.History(r.Context(), dependencyID, p.Limit, p.Offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Paged(w, items, total, p.Limit, p.Offset)
}

// GetPreferences handles GET /dependencies/notifications/preferences[/{projectId}].
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	projectID := optionalParam(chi.URLParam(r, "projectId"))

	svc := service.NewNotificationService(h.deps)
	pref, fromCache, err := svc.GetPreferences(r.Context(), middleware.GetUserID(r.Context()), projectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, PreferencesResponse{Preferences: pref, FromCache: fromCache})
}

// UpdatePreferences handles PUT /dependencies/notifications/preferences[/{projectId}].
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	projectID := optionalParam(chi.URLParam(r, "projectId"))

	var update domain.PreferenceUpdate
	if err := request.DecodeJSON(r, &update); err != nil {
		response.Error(w, domain.NewValidationError([]string{"Invalid JSON body"}))
		return
	}

	svc := service.NewNotificationService(h.deps)
	pref, err := svc.UpdatePreferences(r.Context(), middleware.GetUserID(r.Context()), projectID, update)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, PreferencesResponse{Preferences: pref})
}

// Analytics handles GET /dependencies/notifications/analytics.
func (h *NotificationHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	filter, errs := request.ParseAnalyticsFilter(r)
	if len(errs) > 0 {
		response.Error(w, domain.NewValidationError(errs))
		return
	}

	svc := service.NewNotificationService(h.deps)
	analytics, err := svc.Analytics(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, analytics)
}

// TestNotification handles POST /dependencies/{id}/test-notification.
// The caller is the only recipient.
func (h *NotificationHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	dependencyID := chi.URLParam(r, "id")

	var req request.TestNotificationRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	svc := service.NewNotificationService(h.deps)
	n, err := svc.TestNotification(r.Context(), dependencyID, middleware.GetUserID(r.Context()),
		domain.NotificationType(req.NotificationType), domain.Channel(req.Channel))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, n)
}

// MarkAsRead handles PUT /dependencies/notifications/{notificationId}/read.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationId")

	svc := service.NewNotificationService(h.deps)
	if err := svc.MarkAsRead(r.Context(), notificationID, middleware.GetUserID(r.Context())); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]bool{"success": true})
}

// UserFeed handles GET /dependencies/notifications/user.
func (h *NotificationHandler) UserFeed(w http.ResponseWriter, r *http.Request) {
	filter, errs := request.ParseFeedFilter(r)
	if len(errs) > 0 {
		response.Error(w, domain.NewValidationError(errs))
		return
	}

	svc := service.NewNotificationService(h.deps)
	items, total, err := svc.UserFeed(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Paged(w, items, total, filter.Limit, filter.Offset)
}
