// internal/handlers/conns.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single WebSocket write so one stalled client cannot
// hold up a broadcast goroutine indefinitely.
const writeTimeout = 3 * time.Second

// ConnRegistry tracks live WebSocket connections per room. Game and room
// state never reference connections directly; broadcasts resolve the current
// connection set here at send time.
type ConnRegistry struct {
	mu    sync.Mutex
	rooms map[string]map[uuid.UUID]*websocket.Conn
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{rooms: make(map[string]map[uuid.UUID]*websocket.Conn)}
}

// Register binds a player's connection in a room, replacing any previous one
// (reconnects supersede stale connections).
func (cr *ConnRegistry) Register(roomID string, playerID uuid.UUID, c *websocket.Conn) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.rooms[roomID] == nil {
		cr.rooms[roomID] = make(map[uuid.UUID]*websocket.Conn)
	}
	cr.rooms[roomID][playerID] = c
}

// Unregister removes a player's connection, but only if it is still the one
// given; a reconnect that already replaced it is left alone.
func (cr *ConnRegistry) Unregister(roomID string, playerID uuid.UUID, c *websocket.Conn) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cur, ok := cr.rooms[roomID][playerID]; ok && cur == c {
		delete(cr.rooms[roomID], playerID)
		if len(cr.rooms[roomID]) == 0 {
			delete(cr.rooms, roomID)
		}
	}
}

// DropRoom forgets all connections of a room, e.g. on teardown.
func (cr *ConnRegistry) DropRoom(roomID string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	delete(cr.rooms, roomID)
}

// snapshot returns the current connections of a room.
func (cr *ConnRegistry) snapshot(roomID string) []*websocket.Conn {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(cr.rooms[roomID]))
	for _, c := range cr.rooms[roomID] {
		conns = append(conns, c)
	}
	return conns
}

// BroadcastJSON marshals v and sends it to every connection in the room.
// Callers may hold game or room locks; the writes happen on a fresh goroutine.
func (cr *ConnRegistry) BroadcastJSON(logger *logrus.Logger, roomID string, v interface{}) {
	conns := cr.snapshot(roomID)
	if len(conns) == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("Failed to marshal broadcast message for room %s: %v", roomID, err)
		return
	}
	go func() {
		for _, c := range conns {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write broadcast message in room %s: %v", roomID, err)
			}
		}
	}()
}

// SendJSON marshals v and sends it to one player in the room, if connected.
func (cr *ConnRegistry) SendJSON(logger *logrus.Logger, roomID string, playerID uuid.UUID, v interface{}) {
	cr.mu.Lock()
	c := cr.rooms[roomID][playerID]
	cr.mu.Unlock()
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("Failed to marshal private message for player %s in room %s: %v", playerID, roomID, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			logger.Warnf("Failed to write private message to player %s in room %s: %v", playerID, roomID, err)
		}
	}()
}
