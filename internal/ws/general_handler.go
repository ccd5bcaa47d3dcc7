package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/internal/auth"
	wsPkg "github.com/stickclash/stickclash-backend/pkg/websocket"
)

// GeneralHandler serves lobby connections that only receive match-result
// notifications; they are never bound to a room.
type GeneralHandler struct {
	hub  *wsPkg.GeneralHub
	auth *auth.Service
}

func NewGeneralHandler(hub *wsPkg.GeneralHub, authService *auth.Service) *GeneralHandler {
	return &GeneralHandler{
		hub:  hub,
		auth: authService,
	}
}

func (h *GeneralHandler) ServeLobbyWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.auth.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Lobby upgrade failed for %s: %v", identity.Username, err)
		return
	}

	client := wsPkg.NewClient(identity.UserID, identity.Username, conn)
	h.hub.AddClient(client)

	go h.read(client)
	go h.write(client)
}

// Lobby clients send nothing; reading only detects the close.
func (h *GeneralHandler) read(c *wsPkg.Client) {
	defer func() {
		h.hub.RemoveClient(c)
		close(c.Send)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *GeneralHandler) write(c *wsPkg.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warnf("Lobby write error for %s: %v", c.Username, err)
			return
		}
	}
}
