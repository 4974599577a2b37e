package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
)

// Hub tracks snapshot stream subscribers and pushes the full collection to
// every one of them after each mutation.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *events.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *events.Logger) *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger.WithField("component", "snapshot_hub"),
	}
}

// Register adds a subscriber and immediately sends it the current snapshot.
func (h *Hub) Register(conn *websocket.Conn, snapshot []models.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := conn.WriteJSON(snapshot); err != nil {
		h.logger.WithError(err).Debug("Initial snapshot write failed")
		conn.Close()
		return
	}

	h.conns[conn] = struct{}{}
	h.logger.WithField("subscribers", len(h.conns)).Debug("Subscriber registered")
}

// Unregister drops a subscriber.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
}

// Broadcast pushes a snapshot to all subscribers, dropping any that fail.
func (h *Hub) Broadcast(snapshot []models.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(snapshot); err != nil {
			h.logger.WithError(err).Debug("Dropping dead subscriber")
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
