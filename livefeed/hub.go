// Package livefeed pushes committed scan results to connected dashboards
// over websocket.
package livefeed

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/attendance"
	"github.com/jan112121/attendance-backend/middlewares"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the wire envelope for feed messages.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// client wraps a connection with its write lock: gorilla connections allow
// only one concurrent writer.
type client struct {
	conn *websocket.Conn
	role string

	writeMu sync.Mutex
}

func (c *client) write(ev Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ev)
}

type Hub struct {
	jwtSecret string

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(jwtSecret string) *Hub {
	return &Hub{jwtSecret: jwtSecret, clients: make(map[*client]struct{})}
}

// Handle upgrades GET /ws/feed?token=... after validating the staff JWT.
func (h *Hub) Handle(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "MISSING_TOKEN"})
	}
	claims, err := middlewares.ParseClaims(h.jwtSecret, token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("[feed] upgrade failed: %v", err)
		return nil
	}

	cl := &client{conn: conn, role: claims.Role}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	log.Printf("[feed] client connected (%s)", cl.role)

	// Drain (and discard) client frames so pings/closes are processed.
	go h.reader(cl)
	return nil
}

func (h *Hub) reader(cl *client) {
	defer h.drop(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	_, present := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()
	cl.conn.Close()
	if present {
		log.Println("[feed] client disconnected")
	}
}

// PublishScan implements attendance.FeedPublisher.
func (h *Hub) PublishScan(res *attendance.Result) {
	h.broadcast(Event{Event: "SCAN", Data: res})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		if err := cl.write(ev); err != nil {
			log.Printf("[feed] broadcast error: %v", err)
			h.drop(cl)
		}
	}
}
