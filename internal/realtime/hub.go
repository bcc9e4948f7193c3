// Package realtime hosts the websocket feed consumed by the admin dashboard.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/notify"
)

// Hub tracks connected dashboard clients and broadcasts lifecycle events to
// all of them. A slow or broken client is dropped, never waited on.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *zap.Logger
}

type client struct {
	send chan []byte
}

const clientBuffer = 16

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Broadcast fans the event out to every connected client without blocking;
// clients whose buffers are full miss the event.
func (h *Hub) Broadcast(event notify.RealtimeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("realtime: encoding event failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// ClientCount reports connected clients, for health reporting and tests.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns the websocket handler serving one dashboard connection.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		c := &client{send: make(chan []byte, clientBuffer)}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			_ = conn.Close()
		}()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				// Clients never send anything meaningful; reading just
				// detects the close.
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case payload := <-c.send:
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
