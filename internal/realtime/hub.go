package realtime

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nkyriakou/themis/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	sendBufferSize = 32
)

// ErrNoSubscribers indicates the target user has no connected session.
var ErrNoSubscribers = errors.New("realtime: user has no connected session")

// Event names published on the notification stream.
const (
	EventNotification = "notification"
	EventRead         = "notification.read"
	EventReadAll      = "notification.read_all"
	EventDeleted      = "notification.deleted"
)

// Message is the JSON payload delivered to connected portal clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub fans notification events out to the websocket sessions of each user.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*session]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a notification hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return hostWithoutPort(origin) == hostWithoutPort(r.Host) || isLoopback(hostWithoutPort(origin))
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// Serve upgrades the HTTP connection to a websocket and pumps events for userID
// until the client disconnects.
func (h *Hub) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan Message, sendBufferSize),
	}
	h.register(s)

	go s.writeLoop()
	s.readLoop()
}

// PushNotification delivers a payload to every session of the user, returning
// ErrNoSubscribers when nobody is connected so the in-app delivery can be
// recorded as failed.
func (h *Hub) PushNotification(userID string, payload any) error {
	return h.publish(userID, Message{Event: EventNotification, Data: payload})
}

// Publish sends an arbitrary event to the user's sessions. Used for read/delete
// echoes; missing subscribers are not an error here.
func (h *Hub) Publish(userID string, msg Message) {
	_ = h.publish(userID, msg)
}

// Connections reports the number of live sessions for a user.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) publish(userID string, msg Message) error {
	if userID == "" {
		return ErrNoSubscribers
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.sessions[userID]
	if len(targets) == 0 {
		return ErrNoSubscribers
	}

	for s := range targets {
		select {
		case s.send <- msg:
		default:
			// Slow consumer: drop the session rather than block the hub.
			h.log.Warn("dropping backpressured session", zap.String("user_id", s.userID))
			go s.close()
		}
	}
	return nil
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[s.userID] == nil {
		h.sessions[s.userID] = make(map[*session]struct{})
	}
	h.sessions[s.userID][s] = struct{}{}
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers := h.sessions[s.userID]
	if peers == nil {
		return
	}
	delete(peers, s)
	if len(peers) == 0 {
		delete(h.sessions, s.userID)
	}
}

type session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan Message
	once   sync.Once
}

func (s *session) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only consume; inbound frames just refresh the deadline.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.hub.log.Debug("unexpected close", zap.String("user_id", s.userID), zap.Error(err))
			}
			return
		}
	}
}

func (s *session) writeLoop() {
	defer s.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
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

func (s *session) close() {
	s.once.Do(func() {
		s.hub.unregister(s)
		close(s.send)
		_ = s.conn.Close()
	})
}

func hostWithoutPort(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			raw = u.Host
		}
	}
	if idx := strings.LastIndex(raw, ":"); idx > 0 && !strings.Contains(raw[idx:], "]") {
		raw = raw[:idx]
	}
	return strings.ToLower(raw)
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1", "[::1]":
		return true
	}
	return false
}
