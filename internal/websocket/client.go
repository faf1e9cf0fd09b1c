package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// A full-form update can carry up to 300 fields of 500 chars each.
	maxMessageSize = 512 * 1024
)

// Client is a middleman between one websocket connection and the hub. A
// client is unbound until its setup message names a session; FormId is only
// written by the readPump goroutine and only read elsewhere after binding.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// FormId of the bound session, "" until setup.
	FormId string

	// Buffered channel of outbound messages.
	Send chan []byte

	// closed marks Send as closed. Guarded by the hub mutex; the hub checks
	// it before every channel send so teardown can never race a delivery.
	closed bool
}

// readPump pumps messages from the websocket connection into the hub. It is
// the single writer for this connection's session-facing calls, so inbound
// messages for one connection are handled strictly in order.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"form_id": c.FormId, "error": err.Error(),
				})
			}
			break
		}
		c.Hub.handleInbound(c, data)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
