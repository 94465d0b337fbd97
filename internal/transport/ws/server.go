// Package ws provides the WebSocket endpoint for batch progress watchers.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/hub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Message types exchanged with watchers. Progress events themselves are
// produced by the batch driver and fanned out through the hub.
const (
	TypeWatch    = "watch"
	TypeWatchAck = "watch_ack"
	TypeError    = "error"
)

// WatchMessage subscribes the connection to a batch's events. BatchID "*"
// subscribes to all batches.
type WatchMessage struct {
	Type    string `json:"type"`
	BatchID string `json:"batch_id"`
}

// AckMessage confirms a watch subscription.
type AckMessage struct {
	Type    string `json:"type"`
	BatchID string `json:"batch_id"`
	Ts      int64  `json:"ts"`
}

// ErrorMessage reports a protocol error to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server handles WebSocket connections.
type Server struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(h *hub.Hub) *Server {
	return &Server{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(maxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var msg WatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "invalid_message", "invalid JSON message")
		return
	}

	switch msg.Type {
	case TypeWatch:
		if msg.BatchID == "" {
			s.sendError(conn, "invalid_message", "batch_id is required")
			return
		}
		s.hub.BindWatch(conn, msg.BatchID)
		s.hub.SendJSONToConnection(conn, AckMessage{
			Type:    TypeWatchAck,
			BatchID: msg.BatchID,
			Ts:      time.Now().UnixMilli(),
		})
	default:
		s.sendError(conn, "invalid_message", "unknown message type: "+msg.Type)
	}
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *hub.Connection, code, message string) {
	s.hub.SendJSONToConnection(conn, ErrorMessage{
		Type:    TypeError,
		Code:    code,
		Message: message,
	})
}
