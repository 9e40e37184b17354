// Package ws is the persistent-connection transport: every room has a
// set of subscribed connections which receive the full room snapshot
// after each committed ply and on membership changes. Rejections go
// only to the proposing connection.
package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"chessd/internal/server/core"
)

// client is one subscribed connection. Writes are serialized per
// connection; the underlying websocket does not allow concurrent
// writers.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg core.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks which connections are subscribed to which room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		log:   log,
	}
}

func (h *Hub) add(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
}

func (h *Hub) remove(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[roomID], c)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast sends the message to every connection in the room. A
// failed write only logs; the read loop of the dead connection will
// clean it up.
func (h *Hub) Broadcast(roomID string, msg core.ServerMessage) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.log.Debug("broadcast write failed",
				zap.String("room", roomID), zap.String("conn", c.id), zap.Error(err))
		}
	}
}
