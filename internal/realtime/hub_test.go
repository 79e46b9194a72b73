package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/log"
)

func newTestHub(t *testing.T, rooms ...string) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(log.Discard())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, rooms)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		for _, room := range rooms {
			if hub.Subscribers(room) != 1 {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
	return hub, conn
}

func TestHub_EmitReachesRoom(t *testing.T) {
	hub, conn := newTestHub(t, BoardRoom("b1"), UserRoom("u1"))

	require.NoError(t, hub.Emit(BoardRoom("b1"), EventDependencyCreated, map[string]string{"id": "dep-1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Room    string            `json:"room"`
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "board:b1", msg.Room)
	assert.Equal(t, EventDependencyCreated, msg.Event)
	assert.Equal(t, "dep-1", msg.Payload["id"])
}

func TestHub_OtherRoomsAreNotNotified(t *testing.T) {
	hub, conn := newTestHub(t, BoardRoom("b1"))

	require.NoError(t, hub.Emit(BoardRoom("b2"), EventDependencyDeleted, nil))
	require.NoError(t, hub.Emit(BoardRoom("b1"), EventDependencyUpdated, nil))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), EventDependencyUpdated)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, conn := newTestHub(t, UserRoom("u9"))
	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.Subscribers(UserRoom("u9")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_EmitWithoutSubscribers(t *testing.T) {
	hub := NewHub(log.Discard())
	assert.NoError(t, hub.Emit(UserRoom("nobody"), EventDependencyNotification, "x"))
}
