package realtime

import (
	"sync"

	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

// Conn is a live client connection. Implementations serialize their own
// writes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub maps a user to their single live dashboard connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]Conn
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uint]Conn),
		log:     log,
	}
}

// Authenticate binds conn to userID. A newer connection for the same user
// replaces the older mapping; the older connection is left open.
func (h *Hub) Authenticate(conn Conn, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A connection re-authenticating as someone else drops its old binding.
	for id, c := range h.clients {
		if c == conn && id != userID {
			delete(h.clients, id)
		}
	}

	h.clients[userID] = conn
	h.log.Info("websocket client authenticated", zap.Uint("user_id", userID))
}

// Disconnect removes every mapping that still points at conn.
func (h *Hub) Disconnect(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		if c == conn {
			delete(h.clients, id)
		}
	}
}

// Broadcast delivers event to the user's connection if there is one. Delivery
// is best effort: nothing is queued and a failed write drops the connection.
func (h *Hub) Broadcast(userID uint, event types.Event) {
	h.mu.RLock()
	conn, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	if err := conn.WriteJSON(event); err != nil {
		h.log.Warn("failed to broadcast event",
			zap.Uint("user_id", userID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)

		h.Disconnect(conn)
		conn.Close()
	}
}

// Connected reports whether userID has a live connection.
func (h *Hub) Connected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

// Close shuts every live connection.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[uint]Conn)
	h.mu.Unlock()

	for _, conn := range clients {
		conn.Close()
	}
}
