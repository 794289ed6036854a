// Package server publishes simulation snapshots to websocket clients.
// The feed is read-only: client messages are read and discarded.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/forage/telemetry"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Message is the envelope sent to clients.
type Message struct {
	Type  string              `json:"type"`
	State *telemetry.Snapshot `json:"state"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Hub fans the latest snapshot out to every connected client.
type Hub struct {
	latest chan *telemetry.Snapshot

	mu      sync.Mutex
	clients map[*client]struct{}
	current *telemetry.Snapshot
}

// NewHub creates an idle hub. Call Run to start broadcasting.
func NewHub() *Hub {
	return &Hub{
		latest:  make(chan *telemetry.Snapshot, 1),
		clients: make(map[*client]struct{}),
	}
}

// Publish hands a finalized snapshot to the hub without blocking.
// An unsent older snapshot is replaced.
func (h *Hub) Publish(s *telemetry.Snapshot) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()

	select {
	case h.latest <- s:
		return
	default:
	}
	// Drop the stale one and retry once
	select {
	case <-h.latest:
	default:
	}
	select {
	case h.latest <- s:
	default:
	}
}

// Run broadcasts published snapshots until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.latest:
			h.broadcast(s)
		}
	}
}

func (h *Hub) broadcast(s *telemetry.Snapshot) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	msg := Message{Type: "state", State: s}
	for _, c := range list {
		if err := c.send(msg); err != nil {
			slog.Warn("client send failed", "error", err)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()
	for _, c := range list {
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the client. The newest
// snapshot, if any, is sent immediately.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	current := h.current
	h.mu.Unlock()

	slog.Debug("client connected", "remote", r.RemoteAddr)

	if current != nil {
		if err := c.send(Message{Type: "state", State: current}); err != nil {
			h.remove(c)
			return
		}
	}

	// Drain until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	slog.Debug("client disconnected", "remote", r.RemoteAddr)
}

// Handler returns a mux serving the feed at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}
