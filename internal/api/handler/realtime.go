package handler

import (
	"net/http"
	"strings"

	"github.com/tasktrack/tasktrack/internal/api/middleware"
	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/realtime"
)

// RealtimeHandler upgrades clients to the websocket event stream.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Subscribe handles GET /ws?rooms=board:1,board:2. The caller always joins
// its own user room; other users' rooms are refused.
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	own := realtime.UserRoom(userID)

	rooms := []string{own}
	for _, room := range strings.Split(r.URL.Query().Get("rooms"), ",") {
		room = strings.TrimSpace(room)
		switch {
		case room == "" || room == own:
		case strings.HasPrefix(room, "board:") && len(room) > len("board:"):
			rooms = append(rooms, room)
		default:
			response.Error(w, domain.NewValidationError([]string{"cannot subscribe to room " + room}))
			return
		}
	}

	h.hub.ServeWS(w, r, rooms)
}
