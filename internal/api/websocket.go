// websocket.go - Change-notification fanout for picker sessions. Clients
// subscribe once and receive the full replacement selection on every change,
// never incremental deltas.
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mediboard/backend/internal/picker"
)

// WebSocket message types for the picker notification protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypePong             = "pong"
	MsgTypeSelectionChanged = "picker:changed"
	MsgTypeErrors           = "picker:errors"
)

// WSMessage is the envelope for all picker notifications
type WSMessage struct {
	Type      string      `json:"type"`
	PickerID  string      `json:"pickerId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub tracks subscribed websocket connections and broadcasts picker events.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*websocket.Conn]*sync.Mutex
	upgrader websocket.Upgrader
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced by the CORS middleware in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the connection and keeps it subscribed until the
// client goes away. The read loop only answers pings; all substantive
// traffic is server-push.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}

	h.register(conn)
	defer h.unregister(conn)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}
		if msg.Type == MsgTypePing {
			h.send(conn, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		}
	}
}

// BroadcastSelectionChanged pushes the full new selection of a picker.
func (h *Hub) BroadcastSelectionChanged(pickerID string, sel picker.Selection) {
	if h == nil {
		return
	}
	h.broadcast(WSMessage{
		Type:      MsgTypeSelectionChanged,
		PickerID:  pickerID,
		Payload:   sel,
		Timestamp: time.Now().UnixMilli(),
	})
}

// BroadcastErrors pushes the validation errors of a rejected-only attempt.
func (h *Hub) BroadcastErrors(pickerID string, errs []string) {
	if h == nil {
		return
	}
	h.broadcast(WSMessage{
		Type:      MsgTypeErrors,
		PickerID:  pickerID,
		Payload:   errs,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Count returns the number of live subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &sync.Mutex{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) broadcast(msg WSMessage) {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for conn, lock := range h.conns {
		targets[conn] = lock
	}
	h.mu.RUnlock()

	for conn, lock := range targets {
		if err := h.writeLocked(conn, lock, msg); err != nil {
			fmt.Printf("[WS] dropping subscriber: %v\n", err)
			h.unregister(conn)
		}
	}
}

func (h *Hub) send(conn *websocket.Conn, msg WSMessage) {
	h.mu.RLock()
	lock, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := h.writeLocked(conn, lock, msg); err != nil {
		h.unregister(conn)
	}
}

func (h *Hub) writeLocked(conn *websocket.Conn, lock *sync.Mutex, msg WSMessage) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
