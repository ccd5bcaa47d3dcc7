package websocket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is the ephemeral per-connection state. It is never persisted;
// seat and host flag are reconstructed from the membership row on bind.
type Client struct {
	ID       string
	UserID   uuid.UUID
	Username string
	Conn     *websocket.Conn
	Send     chan []byte

	// Bound room state, owned by the Hub and mutated only under its lock.
	RoomID string
	Seat   int
	Host   bool
}

func NewClient(userID uuid.UUID, username string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, 16),
	}
}
