// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jason-s-yu/truthorlie/internal/session"
)

var (
	// ErrNotConnected means the recipient has no open gateway connection.
	ErrNotConnected = errors.New("recipient not connected")
	// ErrBufferFull means the recipient's outbound queue is full.
	ErrBufferFull = errors.New("outbound buffer full")
)

// outboundBuffer is the per-connection queue depth.
const outboundBuffer = 32

// Outbound is the JSON frame written to clients for each directive.
type Outbound struct {
	Type  session.Kind `json:"type"`
	Lobby string       `json:"lobby,omitempty"`
	Data  any          `json:"data"`
}

// Connection is one user's live websocket.
type Connection struct {
	UserID  string
	OutChan chan []byte
	cancel  context.CancelFunc
}

// Hub tracks live connections by user id and implements notify.Transport.
// A user has at most one connection; a newer one replaces the older.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Connection)}
}

// Register adds a connection for userID, cancelling any previous one.
func (h *Hub) Register(userID string, cancel context.CancelFunc) *Connection {
	c := &Connection{
		UserID:  userID,
		OutChan: make(chan []byte, outboundBuffer),
		cancel:  cancel,
	}

	h.mu.Lock()
	prev := h.conns[userID]
	h.conns[userID] = c
	h.mu.Unlock()

	if prev != nil && prev.cancel != nil {
		prev.cancel()
	}
	return c
}

// Unregister removes c if it is still the user's current connection.
// It reports false when c had already been replaced.
func (h *Hub) Unregister(c *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.UserID] != c {
		return false
	}
	delete(h.conns, c.UserID)
	return true
}

// Connected reports whether userID has a live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Len is the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send queues d on the recipient's connection without blocking.
func (h *Hub) Send(_ context.Context, d session.Directive) error {
	h.mu.RLock()
	c := h.conns[d.Recipient]
	h.mu.RUnlock()
	if c == nil {
		return fmt.Errorf("%s: %w", d.Recipient, ErrNotConnected)
	}

	data, err := json.Marshal(Outbound{Type: d.Kind, Lobby: d.Lobby, Data: d.Data})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.Kind, err)
	}
	select {
	case c.OutChan <- data:
		return nil
	default:
		return fmt.Errorf("%s: %w", d.Recipient, ErrBufferFull)
	}
}
