// Package realtime fans dependency events out to websocket subscribers
// grouped in rooms.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event names.
const (
	EventDependencyCreated      = "dependency:created"
	EventDependencyUpdated      = "dependency:updated"
	EventDependencyDeleted      = "dependency:deleted"
	EventDependencyNotification = "dependency:notification"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// BoardRoom is the room of everyone watching a board.
func BoardRoom(boardID string) string { return "board:" + boardID }

// UserRoom is the private room of a user.
func UserRoom(userID string) string { return "user:" + userID }

// Emitter publishes an event to every subscriber of a room.
type Emitter interface {
	Emit(room, event string, payload any) error
}

// Message is the frame written to subscribers.
type Message struct {
	Room    string `json:"room"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type subscriber struct {
	conn  *websocket.Conn
	send  chan []byte
	rooms []string
}

// Hub tracks websocket subscribers by room.
type Hub struct {
	log   logrus.FieldLogger
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]map[*subscriber]struct{}),
	}
}

// Emit marshals the event once and queues it for every subscriber of room.
// A subscriber whose buffer is full misses the event.
func (h *Hub) Emit(room, event string, payload any) error {
	data, err := json.Marshal(Message{Room: room, Event: event, Payload: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[room] {
		select {
		case s.send <- data:
		default:
			h.log.WithFields(logrus.Fields{"room": room, "event": event}).Warn("realtime: subscriber buffer full, dropping event")
		}
	}
	return nil
}

// Subscribers returns the number of subscribers in room.
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ServeWS upgrades the request and subscribes the connection to rooms until
// the peer disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, rooms []string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("realtime: websocket upgrade failed")
		return
	}

	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer), rooms: rooms}
	h.register(s)
	go h.writePump(s)
	h.readPump(s)
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range s.rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*subscriber]struct{})
			h.rooms[room] = members
		}
		members[s] = struct{}{}
	}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range s.rooms {
		members := h.rooms[room]
		if _, ok := members[s]; !ok {
			continue
		}
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(s.send)
}

// readPump discards client frames; it only exists to observe close and pong.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("realtime: connection closed")
			}
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.WithError(err).Debug("realtime: write failed")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(string, string, any) error { return nil }
