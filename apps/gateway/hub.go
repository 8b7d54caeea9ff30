package main

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub owns the mapping from room token to the set of live connections
// joined to it. Membership is ephemeral: it exists only while sockets are
// connected and is never persisted. With Redis configured, membership is
// mirrored into per-room presence sets for the API to read.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
	redis *redis.Client // nil disables the presence mirror
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		redis: rdb,
	}
}

// Join adds the connection to its room's membership set. A connection
// belongs to exactly one room for its whole lifetime, so joining twice is
// a no-op.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	if h.rooms[c.RoomID] == nil {
		h.rooms[c.RoomID] = make(map[*Client]bool)
	}
	h.rooms[c.RoomID][c] = true
	h.mu.Unlock()

	if h.redis != nil {
		if err := h.redis.SAdd(context.Background(), presenceKey(c.RoomID), c.UserID).Err(); err != nil {
			log.Printf("Failed to set presence for %s: %v", c.UserID, err)
		}
	}
	log.Printf("Client %s joined room %s", c.UserID, c.RoomID)
}

// Leave removes the connection from its room and closes its send channel.
// Empty rooms are dropped from the table; membership is derived state, so
// no other cleanup is needed.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	removed := false
	if clients, ok := h.rooms[c.RoomID]; ok {
		if clients[c] {
			delete(clients, c)
			removed = true
			if len(clients) == 0 {
				delete(h.rooms, c.RoomID)
			}
		}
	}
	h.mu.Unlock()

	c.closeSend()

	if removed {
		if h.redis != nil {
			if err := h.redis.SRem(context.Background(), presenceKey(c.RoomID), c.UserID).Err(); err != nil {
				log.Printf("Failed to delete presence for %s: %v", c.UserID, err)
			}
		}
		log.Printf("Client %s left room %s", c.UserID, c.RoomID)
	}
}

// Broadcast delivers payload to every connection currently joined to the
// room, the originator included. Delivery is best effort per member: a
// connection whose send buffer is full gets dropped from the room without
// affecting the others.
func (h *Hub) Broadcast(roomID string, payload []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(payload) {
			log.Printf("Dropping slow client %s from room %s", c.UserID, c.RoomID)
			h.Leave(c)
		}
	}
}

// RoomSize reports the current number of connections in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func presenceKey(roomID string) string {
	return "room:" + roomID + ":users"
}
