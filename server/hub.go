package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jackdwave/ai-chatbot/core"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 54 * time.Second
	clientSendSize = 64
)

// client is one websocket subscriber. All writes to the connection go
// through the send channel so the connection has a single writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every websocket subscribed to a chat. A slow client
// gets dropped rather than blocking the broadcast.
type Hub struct {
	mu     sync.RWMutex
	chats  map[string]map[*client]struct{}
	logger *core.Logger
}

func NewHub(logger *core.Logger) *Hub {
	return &Hub{
		chats:  make(map[string]map[*client]struct{}),
		logger: logger,
	}
}

func (h *Hub) register(chatID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.chats[chatID]
	if !ok {
		set = make(map[*client]struct{})
		h.chats[chatID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(chatID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.chats[chatID]
	if !ok {
		return
	}
	if _, subscribed := set[c]; !subscribed {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.chats, chatID)
	}
}

// Broadcast encodes the frame once and queues it on every subscriber of the
// chat.
func (h *Hub) Broadcast(chatID string, frame Frame) {
	payload, err := frame.encode()
	if err != nil {
		h.logger.With(map[string]any{"chat_id": chatID, "error": err}).Error("frame encode failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.chats[chatID] {
		select {
		case c.send <- payload:
		default:
			delete(h.chats[chatID], c)
			close(c.send)
		}
	}
}

// writePump drains the client's send queue onto the wire and keeps the
// connection alive with pings. Runs as the connection's only writer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
