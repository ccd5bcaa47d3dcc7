package websocket

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// GeneralHub holds lobby connections that are not bound to any room,
// used to push match-result notifications to everyone watching.
type GeneralHub struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewGeneralHub() *GeneralHub {
	return &GeneralHub{
		clients: make(map[string]*Client),
	}
}

func (h *GeneralHub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	log.Infof("Lobby client %s (%s) connected", c.ID, c.Username)
}

func (h *GeneralHub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.ID)
	log.Infof("Lobby client %s (%s) disconnected", c.ID, c.Username)
}

func (h *GeneralHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}
