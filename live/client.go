package live

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяется CORS-настройками на уровне роутера.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	mu       sync.Mutex
	isClosed bool
}

func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return true
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

// ServeRoom upgrades the request and attaches the connection to room.
// The upgrader writes the HTTP error itself when the handshake fails.
func ServeRoom(hub *Hub, w http.ResponseWriter, r *http.Request, room string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Room: room,
	}
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// ReadPump drains incoming frames (clients are read-only listeners) and
// unregisters the client when the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read error", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

// WritePump sends queued messages one frame each and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Debug("websocket write failed", slog.String("room", c.Room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
