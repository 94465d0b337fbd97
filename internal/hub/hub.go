// Package hub provides connection management for WebSocket progress watchers.
package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WatchAll subscribes a connection to events from every batch.
const WatchAll = "*"

// Connection represents a single WebSocket connection.
type Connection struct {
	ID      string
	BatchID string
	Conn    *websocket.Conn
	Send    chan []byte
	hub     *Hub
	mu      sync.Mutex
}

// Hub manages all WebSocket connections.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// Watchers maps batch_id (or WatchAll) to set of connection IDs
	watchers map[string]map[string]bool

	// Channels for registration/unregistration
	register   chan *Connection
	unregister chan *Connection

	// Broadcast channel for sending to the watchers of one batch
	broadcast chan *BatchMessage

	mu sync.RWMutex
}

// BatchMessage is used to broadcast a message to a batch's watchers.
type BatchMessage struct {
	BatchID string
	Data    []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		watchers:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BatchMessage, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if conn.BatchID != "" {
				if h.watchers[conn.BatchID] == nil {
					h.watchers[conn.BatchID] = make(map[string]bool)
				}
				h.watchers[conn.BatchID][conn.ID] = true
			}
			h.mu.Unlock()
			log.Printf("Connection registered: %s (watching: %s)", conn.ID, conn.BatchID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if conn.BatchID != "" && h.watchers[conn.BatchID] != nil {
					delete(h.watchers[conn.BatchID], conn.ID)
					if len(h.watchers[conn.BatchID]) == 0 {
						delete(h.watchers, conn.BatchID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Printf("Connection unregistered: %s", conn.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			h.deliver(h.watchers[msg.BatchID], msg.Data)
			if msg.BatchID != WatchAll {
				h.deliver(h.watchers[WatchAll], msg.Data)
			}
			h.mu.RUnlock()
		}
	}
}

// deliver sends data to every connection in the set. Called with h.mu held.
func (h *Hub) deliver(connIDs map[string]bool, data []byte) {
	for connID := range connIDs {
		if conn, exists := h.connections[connID]; exists {
			select {
			case conn.Send <- data:
			default:
				// Buffer full, close the connection
				log.Printf("Connection %s buffer full, closing", connID)
				go h.Unregister(conn)
			}
		}
	}
}

// NewConnection creates a new connection and registers it with the hub.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	conn := &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
		hub:  h,
	}
	return conn
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BindWatch subscribes a connection to one batch's events, or to all
// batches when batchID is WatchAll.
func (h *Hub) BindWatch(conn *Connection, batchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Remove from old watch if any
	if conn.BatchID != "" && h.watchers[conn.BatchID] != nil {
		delete(h.watchers[conn.BatchID], conn.ID)
		if len(h.watchers[conn.BatchID]) == 0 {
			delete(h.watchers, conn.BatchID)
		}
	}

	// Add to new watch
	conn.BatchID = batchID
	if h.watchers[batchID] == nil {
		h.watchers[batchID] = make(map[string]bool)
	}
	h.watchers[batchID][conn.ID] = true
}

// Broadcast sends a message to all watchers of a batch.
func (h *Hub) Broadcast(batchID string, data []byte) {
	h.broadcast <- &BatchMessage{
		BatchID: batchID,
		Data:    data,
	}
}

// BroadcastJSON sends a JSON message to all watchers of a batch.
func (h *Hub) BroadcastJSON(batchID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(batchID, data)
	return nil
}

// SendToConnection sends a message to a specific connection.
func (h *Hub) SendToConnection(conn *Connection, data []byte) error {
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// SendJSONToConnection sends a JSON message to a specific connection.
func (h *Hub) SendJSONToConnection(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.SendToConnection(conn, data)
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GetWatcherCount returns the number of connections watching a batch.
func (h *Hub) GetWatcherCount(batchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[batchID])
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// ErrBufferFull is returned when the send buffer is full.
var ErrBufferFull = &BufferFullError{}

// BufferFullError represents a buffer full error.
type BufferFullError struct{}

func (e *BufferFullError) Error() string {
	return "send buffer full"
}
