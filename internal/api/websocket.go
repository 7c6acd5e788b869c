package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fuelpos/receiptd/internal/printer"
)

// WebSocket event types.
const (
	EventJob   = "job"
	EventError = "error"
)

// WSMessage is the envelope for every WebSocket frame.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// hub tracks connected WebSocket clients for job broadcasts.
type hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: make(map[*wsClient]bool), log: log}
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// handleWebSocket upgrades the connection and keeps it on the hub until the
// client disconnects. The service only pushes; inbound frames are drained
// and ignored.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan WSMessage, 64),
	}

	s.hub.add(client)
	s.log.Info("websocket client connected")

	go client.writePump()
	go func() {
		defer func() {
			s.hub.remove(client)
			conn.Close()
			s.log.Info("websocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (h *hub) add(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *hub) remove(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// broadcastJob fans a job snapshot out to every client. Slow clients with a
// full buffer miss the update rather than blocking the queue worker.
func (h *hub) broadcastJob(job printer.Job) {
	msg := WSMessage{Event: EventJob, Data: job}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}
