package ws

import (
	"log/slog"
	"sync"
	"time"

	"luna/internal/domain"
	"luna/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

type Client struct {
	UserID domain.UserID
	Conn   *websocket.Conn
	Send   chan []byte

	hub       *Hub
	log       *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(userID domain.UserID, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		log:    logger.Component("ws").With("user_id", userID),
		done:   make(chan struct{}),
	}
}

// Run registers the client and pumps messages until the connection drops.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()

	if msg, err := encode(MsgReady, map[string]domain.UserID{"user_id": c.UserID}); err == nil {
		c.send(msg)
	}

	c.readPump()
}

// send queues msg without blocking; a client that cannot keep up loses the message.
func (c *Client) send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.log.Warn("send buffer full, dropping message")
		return false
	}
}

//read
func (c *Client) readPump() {
	defer c.close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", "error", err)
			}
			return
		}
		c.hub.handle(c, msg)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.unregister(c)
		_ = c.Conn.Close()
	})
}
