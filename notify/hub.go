package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks live websocket connections per user
type Hub struct {
	clients map[string]map[*client]struct{}
	mutex   sync.Mutex
}

// client serializes writes to one connection
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the request and keeps the connection registered for userID
// until the client goes away
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "userId", userID, "error", err)
		return
	}

	c := &client{conn: conn}
	h.register(userID, c)
	zap.S().Debugw("user connected to notifications", "userId", userID)

	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.unregister(userID, c)
	conn.Close()
	zap.S().Debugw("user disconnected from notifications", "userId", userID)
}

// Connections returns how many live connections userID has
func (h *Hub) Connections(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[userID])
}

// Publish sends a new_notification event to every connection of userID.
// Connections that fail to write are dropped. The hub lock is not held while
// writing, so a slow client only delays its own delivery.
func (h *Hub) Publish(userID string, notification models.Notification) {
	h.mutex.Lock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mutex.Unlock()

	event := map[string]interface{}{
		"event": "new_notification",
		"data":  notification,
	}
	for _, c := range targets {
		if err := c.writeJSON(event); err != nil {
			zap.S().Warnw("failed to push notification", "userId", userID, "error", err)
			h.unregister(userID, c)
			c.conn.Close()
		}
	}
}

func (h *Hub) register(userID string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
