package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// sendBufferSize is the per-client broadcast buffer. A client this far
	// behind is dropped by the hub.
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one websocket subscriber in a board room.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades an HTTP request to a websocket connection and subscribes
// it to the given board's room until the peer disconnects.
func ServeWS(hub *Hub, boardID uuid.UUID, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("websocket upgrade failed",
			slog.String("board_id", boardID.String()),
			slog.String("error", err.Error()))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	hub.Register(boardID, client)

	go client.writePump()
	client.readPump(hub, boardID)
}

// writePump forwards broadcasts from the hub to the peer. It exits when the
// hub closes the send channel or a write fails.
func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	// Hub closed the channel: tell the peer before closing.
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound messages (subscribers are read-only) and
// unregisters the client when the connection drops.
func (c *Client) readPump(hub *Hub, boardID uuid.UUID) {
	defer func() {
		hub.Unregister(boardID, c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
