// Package ws implements the realtime fan-out channel. Every connected
// client may submit a new message; privileged clients may submit replies.
// Each successful mutation results in a single state-changed notification
// broadcast to all connected clients, which carries no payload: clients
// re-fetch the affected collection over HTTP.
package ws

import (
	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/metrics"

	json "github.com/goccy/go-json"
)

// Message is the envelope for every frame on the channel.
type Message struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ChatService defines the mutation operations the channel can invoke.
type ChatService interface {
	PostMessage(charID int64, text string) (models.ChatMessage, error)
	AttachReply(id int64, text string, audio *string) (models.ChatMessage, error)
}

// Hub maintains the set of connected clients and broadcasts events to all
// of them. Broadcast is fire-and-forget: a client whose send buffer is full
// is dropped and expected to reconcile by re-fetching over HTTP.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	chatService ChatService
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// NewHub creates a hub. The chat service is attached afterwards with
// SetChatService because the service itself broadcasts through the hub.
func NewHub(log *logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
		metrics:    m,
	}
}

// SetChatService wires the mutation handler for inbound submit events.
func (h *Hub) SetChatService(svc ChatService) {
	h.chatService = svc
}

// Notify broadcasts a payload-free event to every connected client.
func (h *Hub) Notify(event string) {
	data, err := json.Marshal(Message{Type: event})
	if err != nil {
		h.log.LogError(err, "marshal broadcast event", "event", event)
		return
	}
	h.broadcast <- data
}

// Run processes registration and broadcast events until the process exits.
// Meant to be started once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.metrics != nil {
				h.metrics.ClientsConnected.Inc()
			}
			h.log.Debug("channel client registered", "client", client.ID, "user_id", client.UserID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if h.metrics != nil {
					h.metrics.ClientsConnected.Dec()
				}
				h.log.Debug("channel client unregistered", "client", client.ID)
			}

		case message := <-h.broadcast:
			if h.metrics != nil {
				h.metrics.Broadcasts.Inc()
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
					if h.metrics != nil {
						h.metrics.ClientsConnected.Dec()
					}
					h.log.Warn("channel client dropped, send buffer full", "client", client.ID)
				}
			}
		}
	}
}
