package handlers

import (
	"github.com/gofiber/contrib/websocket"

	ws "github.com/user/investrack/backend/internal/websocket"
)

// PriceWSEndpoint is the handler for the WebSocket price feed. The feed is
// public; it carries only market prices, never account data.
func PriceWSEndpoint(c *websocket.Conn) {
	client := &ws.Client{
		Conn: c,
		Send: make(chan []byte, 256),
	}

	hub.Register <- client

	go clientWritePump(client)

	// Read loop on this goroutine: keeps the connection open and detects
	// disconnects. Clients are not expected to send anything.
	defer func() {
		hub.Unregister <- client
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("WebSocket client disconnected unexpectedly")
			}
			return
		}
	}
}

// clientWritePump pumps messages from the hub to the websocket connection.
func clientWritePump(client *ws.Client) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			hub.Unregister <- client
			return
		}
	}
}
