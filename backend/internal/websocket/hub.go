// Package websocket fans quote updates out to connected browser clients.
package websocket

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// Client represents a single WebSocket client connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte // Buffered channel for outbound messages
}

func (c *Client) remoteAddr() string {
	if c.Conn == nil {
		return "unknown"
	}
	return c.Conn.RemoteAddr().String()
}

// Hub manages WebSocket clients and broadcasts messages. All client map
// access happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	log        zerolog.Logger
}

// NewHub creates and initializes a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run starts the Hub's event loop.
func (h *Hub) Run() {
	h.log.Info().Msg("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.log.Debug().Str("remote", client.remoteAddr()).Msg("Client registered")

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug().Str("remote", client.remoteAddr()).Msg("Client unregistered")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Client's send buffer is full, drop the connection.
					delete(h.clients, client)
					close(client.Send)
					h.log.Warn().Str("remote", client.remoteAddr()).Msg("Client send buffer full, dropping")
				}
			}
		}
	}
}

// BroadcastJSON marshals v and queues it for all clients. Non-blocking: if
// the hub is saturated the message is dropped rather than stalling the
// caller.
func (h *Hub) BroadcastJSON(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Msg("Broadcast channel full, dropping message")
	}
}
