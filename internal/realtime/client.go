package realtime

import (
	"time"

	"github.com/gorilla/websocket"

	"kindred/internal/logger"
	"kindred/internal/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

// Client is one live WebSocket connection for an authenticated user.
// A user with several devices or tabs holds several clients. The
// families and closed fields are guarded by the hub's mutex.
type Client struct {
	ID     string
	UserID string

	hub      *Hub
	conn     *websocket.Conn
	send     chan Event
	families map[string]struct{}
	closed   bool
}

// NewClient creates a client for an upgraded connection. The caller is
// expected to Register it with the hub and then Run it.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		hub:      hub,
		conn:     conn,
		send:     make(chan Event, sendBufferSize),
		families: make(map[string]struct{}),
	}
}

// Run starts the read and write pumps and blocks until the connection
// closes. The client is unregistered from the hub on the way out.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump consumes join/leave frames from the client until the
// connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Get().Debugw("websocket read error", "client_id", c.ID, "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes one subscription frame. Joining an
// unauthorized family yields a denial rather than closing the
// connection, since the client may legitimately race its own removal.
func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Action {
	case actionJoin:
		version, ok := c.hub.JoinFamily(c, msg.FamilyID)
		if !ok {
			c.enqueue(Event{Type: EventRoomDenied, FamilyID: msg.FamilyID})
			return
		}
		// The ack carries the channel version so a reconnecting client
		// can detect events it missed while offline.
		c.enqueue(Event{Type: EventRoomJoined, FamilyID: msg.FamilyID, Version: version})
	case actionLeave:
		c.hub.LeaveFamily(c, msg.FamilyID)
	default:
		logger.Get().Debugw("unknown websocket action", "client_id", c.ID, "action", msg.Action)
	}
}

// enqueue pushes an event onto the client's own send queue.
func (c *Client) enqueue(event Event) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	c.hub.deliverLocked(c, event)
}

// writePump drains the send queue to the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
