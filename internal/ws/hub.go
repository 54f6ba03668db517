package ws

import (
	"encoding/json"
	"log/slog"

	"ServiceSaathi/entity"
)

// Event is the envelope for everything pushed to monitoring clients.
type Event struct {
	Type string      `json:"type"` // "chat_message"
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected monitoring clients and fans the
// conversation transcript out to them. The feed is one-way: clients only
// listen.
type Hub struct {
	// clients is owned by the Run goroutine; all access goes through the
	// register, unregister and broadcast channels.
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastMessage pushes a transcript entry to all connected clients.
// Non-blocking for callers as long as the broadcast buffer has room.
func (h *Hub) BroadcastMessage(msg entity.ChatMessage) {
	select {
	case h.broadcast <- &Event{Type: "chat_message", Data: msg}:
	default:
		if h.log != nil {
			h.log.Warn("transcript feed backlogged, dropping event")
		}
	}
}
