package websocket

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Hub indexes live connections by room for broadcast. It is a cache over
// the durable Room Store: on restart all connections drop and rebuild it
// by re-joining. The mutex covers binds, unbinds and broadcast iteration
// so a broadcast never sees a half-mutated member set.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
	}
}

// Bind associates a client with a room. Seat and host flag must already
// be set on the client from the membership row. A connection re-binding
// elsewhere is evicted from its old room, and a fresh connection for a
// user replaces any stale one still in the room, so a dead socket never
// lingers in a broadcast set.
func (h *Hub) Bind(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.RoomID != "" && c.RoomID != roomID {
		h.removeLocked(c.RoomID, c.ID)
	}

	room, ok := h.rooms[roomID]
	if !ok {
		room = NewRoom(roomID)
		h.rooms[roomID] = room
	}
	for id, existing := range room.Clients {
		if existing.UserID == c.UserID && id != c.ID {
			delete(room.Clients, id)
			log.Infof("Evicted stale connection %s for %s from room %s", id, c.Username, roomID)
		}
	}
	room.Clients[c.ID] = c
	c.RoomID = roomID
	log.Infof("Client %s (%s) bound to room %s on seat %d", c.ID, c.Username, roomID, c.Seat)
}

// removeLocked drops a client id from a room's broadcast set. Callers
// hold the Hub lock.
func (h *Hub) removeLocked(roomID, clientID string) {
	if room, ok := h.rooms[roomID]; ok {
		delete(room.Clients, clientID)
		if len(room.Clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Unbind removes the client from its room, dropping the room entry once
// empty. The second return reports whether the client was actually in
// the broadcast set; an evicted connection unbinds without having been.
func (h *Hub) Unbind(c *Client) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.RoomID == "" {
		return "", false
	}
	roomID := c.RoomID
	present := false
	if room, ok := h.rooms[roomID]; ok {
		if _, ok := room.Clients[c.ID]; ok {
			present = true
			h.removeLocked(roomID, c.ID)
		}
	}
	c.RoomID = ""
	c.Seat = 0
	c.Host = false
	return roomID, present
}

// Broadcast sends to every client bound to the room except senderID;
// empty senderID reaches all of them.
func (h *Hub) Broadcast(roomID, senderID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		room.broadcast(senderID, message)
	}
}

// ClientCount reports how many connections are currently bound to a room.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		return len(room.Clients)
	}
	return 0
}

// Contains reports whether the client is in the room's broadcast set.
func (h *Hub) Contains(roomID string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	_, ok = room.Clients[c.ID]
	return ok
}
