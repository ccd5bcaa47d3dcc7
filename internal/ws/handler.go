package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/db"
	"github.com/stickclash/stickclash-backend/internal/auth"
	"github.com/stickclash/stickclash-backend/internal/combat"
	"github.com/stickclash/stickclash-backend/internal/room"
	wsPkg "github.com/stickclash/stickclash-backend/pkg/websocket"
)

// RoomStore is the slice of the Room Store the gateway needs: membership
// lookups at bind time and host checks at event time.
type RoomStore interface {
	Membership(roomID, userID uuid.UUID) (db.Membership, error)
	Members(roomID uuid.UUID) ([]db.RoomMember, error)
	IsHost(roomID, userID uuid.UUID) (bool, error)
	SetStatus(roomID, requesterID uuid.UUID, status db.RoomStatus) error
	UpdateStatus(roomID uuid.UUID, status db.RoomStatus) error
}

type Gateway struct {
	hub   *wsPkg.Hub
	auth  *auth.Service
	rooms RoomStore
}

func NewGateway(hub *wsPkg.Hub, authService *auth.Service, rooms RoomStore) *Gateway {
	return &Gateway{
		hub:   hub,
		auth:  authService,
		rooms: rooms,
	}
}

// ServeWS authenticates the token before upgrading; an unauthenticated
// connection never reaches the event loop.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := g.auth.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		log.Warnf("Realtime auth failed: %v", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Upgrade failed for %s: %v", identity.Username, err)
		return
	}

	client := wsPkg.NewClient(identity.UserID, identity.Username, conn)
	log.Infof("User %s connected (%s)", identity.Username, client.ID)

	go g.write(client)
	go g.read(client)
}

func (g *Gateway) read(c *wsPkg.Client) {
	defer func() {
		g.handleDisconnect(c)
		close(c.Send)
		c.Conn.Close()
	}()
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("Read error for %s: %v", c.Username, err)
			}
			return
		}
		g.handleMessage(c, data)
	}
}

func (g *Gateway) write(c *wsPkg.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warnf("Write error for %s: %v", c.Username, err)
			return
		}
	}
}

func (g *Gateway) handleMessage(c *wsPkg.Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		g.sendError(c, "malformed event")
		return
	}

	switch env.Type {
	case EvtRoomJoin:
		g.handleRoomJoin(c, env.Payload)
	case EvtRoomLeave:
		g.handleRoomLeave(c)
	case EvtPlayerReady:
		g.handleReady(c, env.Payload)
	case EvtWeaponSelected:
		g.handleWeaponSelected(c, env.Payload)
	case EvtMatchConfigure:
		g.handleConfigure(c, env.Payload)
	case EvtMatchStart:
		g.handleStart(c, env.Payload)
	case EvtAction:
		g.handleAction(c, env.Payload)
	case EvtMatchEnd:
		g.handleEnd(c, env.Payload)
	case EvtChatMessage:
		g.handleChat(c, env.Payload)
	case EvtTaunt:
		g.handleTaunt(c, env.Payload)
	default:
		g.sendError(c, "unknown event type")
	}
}

// handleRoomJoin binds the connection only after the membership row is
// verified. Failure leaves the connection open but unbound. A connection
// already bound elsewhere leaves that room first, so its peer hears
// room.player-left and the old broadcast set does not keep a dead entry.
func (g *Gateway) handleRoomJoin(c *wsPkg.Client, payload json.RawMessage) {
	var req joinPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == uuid.Nil {
		g.sendError(c, "room id is required")
		return
	}

	membership, err := g.rooms.Membership(req.RoomID, c.UserID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			log.Warnf("room.join refused for %s in room %s", c.Username, req.RoomID)
			g.sendError(c, "not authorized for this room")
			return
		}
		log.Errorf("Membership lookup failed for %s in room %s: %v", c.Username, req.RoomID, err)
		g.sendError(c, "failed to join room")
		return
	}
	host, err := g.rooms.IsHost(req.RoomID, c.UserID)
	if err != nil {
		g.sendError(c, "failed to join room")
		return
	}

	if c.RoomID != "" && c.RoomID != req.RoomID.String() {
		g.handleRoomLeave(c)
	}

	c.Seat = membership.Seat
	c.Host = host
	g.hub.Bind(req.RoomID.String(), c)

	members, err := g.rooms.Members(req.RoomID)
	if err != nil {
		log.Errorf("Failed to load roster for room %s: %v", req.RoomID, err)
		members = nil
	}
	g.broadcastAll(c.RoomID, EvtPlayerJoined, map[string]interface{}{
		"userId":   c.UserID,
		"username": c.Username,
		"seat":     c.Seat,
		"players":  members,
	})
	log.Infof("%s joined room %s (seat %d, host %v)", c.Username, req.RoomID, c.Seat, c.Host)
}

func (g *Gateway) handleRoomLeave(c *wsPkg.Client) {
	if c.RoomID == "" {
		return
	}
	username, userID, seat := c.Username, c.UserID, c.Seat
	roomID, present := g.hub.Unbind(c)
	if !present {
		return
	}
	g.broadcastAll(roomID, EvtPlayerLeft, map[string]interface{}{
		"userId":   userID,
		"username": username,
		"seat":     seat,
	})
	log.Infof("%s left room %s", username, roomID)
}

// handleDisconnect mirrors room.leave at transport teardown, but the
// membership row stays so the same user can rebind after reconnecting.
// A connection evicted by a newer one for the same user is no longer in
// the broadcast set, so its teardown announces nothing.
func (g *Gateway) handleDisconnect(c *wsPkg.Client) {
	if c.RoomID == "" {
		log.Infof("User %s disconnected", c.Username)
		return
	}
	username, userID, seat := c.Username, c.UserID, c.Seat
	roomID, present := g.hub.Unbind(c)
	if !present {
		log.Infof("User %s disconnected (superseded connection)", username)
		return
	}
	g.broadcastAll(roomID, EvtPlayerDisconnected, map[string]interface{}{
		"userId":   userID,
		"username": username,
		"seat":     seat,
	})
	log.Infof("User %s disconnected from room %s", username, roomID)
}

func (g *Gateway) handleReady(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	var req readyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, "malformed ready payload")
		return
	}
	g.broadcastOthers(c, EvtPlayerReady, map[string]interface{}{
		"userId":   c.UserID,
		"username": c.Username,
		"seat":     c.Seat,
		"ready":    req.Ready,
	})
}

// Weapon choices are re-broadcast on every change so the peer's view is
// never stale; the committed choice travels in match.configure.
func (g *Gateway) handleWeaponSelected(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	var req weaponPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, "malformed weapon payload")
		return
	}
	g.broadcastOthers(c, EvtWeaponSelected, map[string]interface{}{
		"userId":   c.UserID,
		"username": c.Username,
		"weapon":   req.Weapon,
	})
}

// handleConfigure re-verifies host status against the store; the flag
// cached at bind time is not trusted.
func (g *Gateway) handleConfigure(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		g.sendError(c, "not in a room")
		return
	}
	roomID, err := uuid.Parse(c.RoomID)
	if err != nil {
		g.sendError(c, "not in a room")
		return
	}
	host, err := g.rooms.IsHost(roomID, c.UserID)
	if err != nil || !host {
		log.Warnf("Non-host %s tried to configure room %s", c.Username, c.RoomID)
		g.sendError(c, "only host can configure game")
		return
	}

	g.relayRaw(c.RoomID, "", EvtMatchConfigure, payload)
	log.Infof("Room %s configured by %s", c.RoomID, c.Username)
}

func (g *Gateway) handleStart(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		g.sendError(c, "not in a room")
		return
	}
	roomID, err := uuid.Parse(c.RoomID)
	if err != nil {
		g.sendError(c, "not in a room")
		return
	}
	host, err := g.rooms.IsHost(roomID, c.UserID)
	if err != nil || !host {
		log.Warnf("Non-host %s tried to start room %s", c.Username, c.RoomID)
		g.sendError(c, "only host can start game")
		return
	}
	if g.hub.ClientCount(c.RoomID) < 2 {
		g.sendError(c, "waiting for the other player")
		return
	}
	if err := g.rooms.SetStatus(roomID, c.UserID, db.StatusPlaying); err != nil {
		log.Errorf("Failed to start room %s: %v", c.RoomID, err)
		g.sendError(c, "failed to start game")
		return
	}

	g.relayRaw(c.RoomID, "", EvtMatchStart, payload)
	log.Infof("Match started in room %s by %s", c.RoomID, c.Username)
}

// handleAction relays a resolved combat action to the peer with the
// actor's seat and name stamped on. The gateway never resimulates and
// deliberately does not reject out-of-turn actions.
func (g *Gateway) handleAction(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	var action combat.Action
	if err := json.Unmarshal(payload, &action); err != nil {
		g.sendError(c, "malformed action payload")
		return
	}
	action.Actor = c.Seat
	action.Username = c.Username
	g.broadcastOthers(c, EvtAction, action)
}

// handleEnd marks the room finished and echoes the result to both seats.
// Either peer may conclude; both reach the same verdict from the same
// action stream.
func (g *Gateway) handleEnd(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	roomID, err := uuid.Parse(c.RoomID)
	if err != nil {
		return
	}
	if err := g.rooms.UpdateStatus(roomID, db.StatusFinished); err != nil {
		log.Errorf("Failed to finish room %s: %v", c.RoomID, err)
	}
	g.relayRaw(c.RoomID, "", EvtMatchEnd, payload)
	log.Infof("Match ended in room %s, reported by %s", c.RoomID, c.Username)
}

func (g *Gateway) handleChat(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	var req chatPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	g.broadcastAll(c.RoomID, EvtChatMessage, map[string]interface{}{
		"userId":    c.UserID,
		"username":  c.Username,
		"message":   req.Message,
		"timestamp": time.Now().UnixMilli(),
	})
}

func (g *Gateway) handleTaunt(c *wsPkg.Client, payload json.RawMessage) {
	if c.RoomID == "" {
		return
	}
	var req tauntPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	g.broadcastOthers(c, EvtTaunt, map[string]interface{}{
		"userId":   c.UserID,
		"username": c.Username,
		"taunt":    req.Taunt,
	})
}

func (g *Gateway) sendError(c *wsPkg.Client, message string) {
	g.send(c, EvtError, map[string]string{"message": message})
}

func (g *Gateway) send(c *wsPkg.Client, eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (g *Gateway) broadcastAll(roomID, eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		return
	}
	g.hub.Broadcast(roomID, "", data)
}

func (g *Gateway) broadcastOthers(c *wsPkg.Client, eventType string, payload interface{}) {
	data, err := encode(eventType, payload)
	if err != nil {
		return
	}
	g.hub.Broadcast(c.RoomID, c.ID, data)
}

// relayRaw forwards a client payload unchanged under a new envelope.
func (g *Gateway) relayRaw(roomID, senderID, eventType string, payload json.RawMessage) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		return
	}
	g.hub.Broadcast(roomID, senderID, data)
}

func encode(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
