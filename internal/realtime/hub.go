package realtime

import (
	"context"
	"sync"

	"github.com/nanopro-wms/backend/pkg/logger"
)

// Hub fans change events out to every connected UI. Unlike a device-keyed
// hub there is no addressing: all warehouse screens watch the same tables,
// so every event goes to every client.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*Client]bool

	logg *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		logg:       logg,
	}
}

// Run owns the client set. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			if h.logg != nil {
				h.logg.Debug(h.logg.WithField(ctx, "clients", count), "realtime client connected")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if h.logg != nil {
				h.logg.Debug(h.logg.WithField(ctx, "clients", count), "realtime client disconnected")
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the frame rather than block
					// the hub. The client still holds a live socket.
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast queues a frame for every connected client.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		if h.logg != nil {
			h.logg.Warn(context.Background(), "realtime broadcast buffer full, frame dropped")
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
