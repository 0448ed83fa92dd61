// Package telemetry publishes the drive state over a small dashboard
// server: a REST snapshot plus websocket streams updated at the control
// rate. It also accepts teleop drive commands over a websocket so a driver
// station client can command the chassis.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/hightide-robotics/reefbot/internal/log"
)

// Hub fans one JSON stream out to every connected websocket client.
type Hub struct {
	name string

	clients map[*client]bool

	broadcast  chan []byte
	register   chan *client
	unregister chan *client

	mu sync.RWMutex
}

func newHub(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run services registration and broadcast. Called in a goroutine by the
// server.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("telemetry client connected", "stream", h.name, "clients", count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("telemetry client disconnected", "stream", h.name, "clients", count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it rather than stall the
					// control-rate broadcast.
					close(c.send)
					delete(h.clients, c)
					log.Warn("telemetry client dropped", "stream", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every client; drops it when the queue is
// full rather than blocking the control loop.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("telemetry broadcast queue full", "stream", h.name)
	}
}

// BroadcastJSON encodes and broadcasts v.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
