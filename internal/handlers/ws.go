package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// wsConn serializes writes on a gorilla connection so the hub, the ping loop
// and the auth ack never write concurrently.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Non-browser clients send no Origin.
	if origin == "" {
		return true
	}
	return slices.Contains(h.allowedOrigins, origin)
}

// WebSocket upgrades the request and waits for {type:"auth", userId}. Once
// bound, the connection only receives events pushed through the hub.
func (h *Handler) WebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}

	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &wsConn{conn: raw}

	raw.SetReadLimit(maxMessageSize)
	if err := raw.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.log.Warn("failed to set initial read deadline", zap.Error(err))
		raw.Close()
		return
	}
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})

	defer func() {
		close(done)
		h.hub.Disconnect(conn)
		conn.Close()
		h.log.Debug("websocket connection closed")
	}()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					h.log.Debug("websocket ping failed", zap.Error(err))
					return
				}
			}
		}
	}()

	for {
		_, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		if err := raw.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		var msg types.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Debug("ignoring malformed websocket message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "auth":
			if msg.UserID == 0 {
				h.log.Debug("websocket auth without user id")
				continue
			}

			h.hub.Authenticate(conn, msg.UserID)

			if err := conn.WriteJSON(types.Event{
				Type: types.EventAuthenticated,
				Data: map[string]uint{"userId": msg.UserID},
			}); err != nil {
				h.log.Debug("failed to acknowledge websocket auth", zap.Error(err))
				return
			}

			h.log.Info("websocket authenticated", zap.Uint("user_id", msg.UserID))
		default:
			h.log.Debug("ignoring websocket message", zap.String("type", msg.Type))
		}
	}
}
