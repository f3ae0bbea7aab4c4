package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Channel kinds a session can open.
const (
	ChannelChat          = "chat"
	ChannelNotifications = "notifications"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live WebSocket session. A user may hold several at once
// across devices; each gets its own Client.
type Client struct {
	ID      string
	UserID  uuid.UUID
	Channel string
	Conn    *websocket.Conn
	Send    chan []byte

	rooms map[string]bool
	mu    sync.RWMutex
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, channel string) *Client {
	return &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		rooms:   make(map[string]bool),
	}
}

func (c *Client) joinRoom(room string) {
	c.mu.Lock()
	c.rooms[room] = true
	c.mu.Unlock()
}

func (c *Client) leaveRoom(room string) {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

// Rooms returns a snapshot of the rooms this session has joined.
func (c *Client) Rooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Enqueue hands a frame to the session's write pump without blocking. Frames
// to a full buffer are dropped; delivery is at most once.
func (c *Client) Enqueue(payload []byte) {
	select {
	case c.Send <- payload:
	default:
	}
}

// WritePump drains the send buffer onto the wire and keeps the connection
// alive with pings. Runs in its own goroutine per session; exits when the
// hub closes Send.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
