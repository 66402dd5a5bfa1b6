package fanout

import (
	"sync"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Hub is the process-scoped subscriber set. Connections are added on upgrade
// and removed on disconnect or write failure; broadcast is best-effort with
// no per-subscriber acknowledgment and no replay.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*websocket.Conn
	logger      zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*websocket.Conn),
		logger:      logger,
	}
}

// Add registers a connection and returns its handle.
func (h *Hub) Add(conn *websocket.Conn) string {
	id := gonanoid.Must()

	h.mu.Lock()
	h.subscribers[id] = conn
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Info().Str("subscriber", id).Int("subscribers", count).Msg("client connected")
	return id
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	_, ok := h.subscribers[id]
	delete(h.subscribers, id)
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		h.logger.Info().Str("subscriber", id).Int("subscribers", count).Msg("client disconnected")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast sends message to every currently connected subscriber. A failed
// write drops only that subscriber.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(h.subscribers))
	for id, conn := range h.subscribers {
		conns[id] = conn
	}
	h.mu.RUnlock()

	for id, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn().Err(err).Str("subscriber", id).Msg("write failed, dropping subscriber")
			h.Remove(id)
			conn.Close()
		}
	}
}

// CloseAll disconnects every subscriber. Called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.subscribers {
		conn.Close()
		delete(h.subscribers, id)
	}
}
