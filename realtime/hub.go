// Package realtime holds the process-local presence registry and the live
// event channel built on top of it. Presence lives and dies with the
// process; durable state is the stores' job, so a push to an absent or
// slow user is dropped, never queued.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"socialhub/models"
)

// Client is one live connection. It starts unbound; Announce binds it to a
// user. Writes go through a buffered channel drained by WritePump so a
// push never blocks the request that triggered it.
type Client struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	userID int64
	send   chan []byte
	closed bool
}

// NewClient wraps a websocket connection in an unannounced client
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// UserID returns the bound user id, or 0 before the client has announced
func (c *Client) UserID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) setUserID(id int64) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// trySend enqueues data without blocking. False means the buffer was full
// or the client already closed.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close shuts the send channel and the underlying connection. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
	}
}

// WritePump drains the send channel onto the connection. Runs in its own
// goroutine per connection; exits when the client closes.
func (c *Client) WritePump() {
	defer func() {
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Hub maps user ids to their single live connection. All mutation goes
// through one mutex; the last announce for a user wins, and a stale handle
// cannot evict a newer entry.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client
}

// NewHub creates an empty presence registry
func NewHub() *Hub {
	return &Hub{clients: make(map[int64]*Client)}
}

// Announce binds a connection to a user, replacing any previous handle for
// that user, and tells everyone else the user came online.
func (h *Hub) Announce(userID int64, c *Client) {
	c.setUserID(userID)

	h.mu.Lock()
	prev := h.clients[userID]
	h.clients[userID] = c
	h.mu.Unlock()

	if prev != nil && prev != c {
		prev.Close()
	}

	log.Debug().Int64("userId", userID).Str("conn", c.ID).Msg("client announced")
	h.BroadcastExcept(userID, "userOnline", userID)
}

// Withdraw removes a connection from the registry. A handle that never
// announced, or that has since been replaced by a newer one for the same
// user, is left alone.
func (h *Hub) Withdraw(c *Client) {
	userID := c.UserID()
	if userID == 0 {
		return
	}

	h.mu.Lock()
	owner := h.clients[userID] == c
	if owner {
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	if !owner {
		return
	}

	log.Debug().Int64("userId", userID).Str("conn", c.ID).Msg("client withdrawn")
	h.BroadcastExcept(userID, "userOffline", userID)
}

// Resolve returns the live connection for a user, if any
func (h *Hub) Resolve(userID int64) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// IsOnline reports whether a user currently has a live connection
func (h *Hub) IsOnline(userID int64) bool {
	_, ok := h.Resolve(userID)
	return ok
}

// PushToUser delivers an event to one user if they are connected. An
// offline user is the expected case, not an error; the durable stores are
// the source of truth for anything missed. A consumer whose buffer is full
// is evicted rather than blocked on.
func (h *Hub) PushToUser(userID int64, event string, payload interface{}) {
	data, err := json.Marshal(models.WebSocketMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal push payload")
		return
	}

	c, ok := h.Resolve(userID)
	if !ok {
		return
	}
	if !c.trySend(data) {
		log.Warn().Int64("userId", userID).Str("event", event).Msg("dropping slow consumer")
		h.Withdraw(c)
		c.Close()
	}
}

// BroadcastExcept sends an event to every announced client except one user
func (h *Hub) BroadcastExcept(exceptUserID int64, event string, payload interface{}) {
	data, err := json.Marshal(models.WebSocketMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast payload")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for userID, c := range h.clients {
		if userID != exceptUserID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.trySend(data)
	}
}
