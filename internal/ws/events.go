package ws

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Envelope is the tagged wire frame for every realtime event.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server events.
const (
	EvtRoomJoin       = "room.join"
	EvtRoomLeave      = "room.leave"
	EvtPlayerReady    = "player.ready"
	EvtWeaponSelected = "player.weapon-selected"
	EvtMatchConfigure = "match.configure"
	EvtMatchStart     = "match.start"
	EvtAction         = "action"
	EvtMatchEnd       = "match.end"
	EvtChatMessage    = "chat.message"
	EvtTaunt          = "game.taunt"
)

// Server -> client notifications.
const (
	EvtPlayerJoined       = "room.player-joined"
	EvtPlayerLeft         = "room.player-left"
	EvtPlayerDisconnected = "room.player-disconnected"
	EvtError              = "error"
)

type joinPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

type readyPayload struct {
	Ready bool `json:"ready"`
}

type weaponPayload struct {
	Weapon string `json:"weapon"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type tauntPayload struct {
	Taunt string `json:"taunt"`
}
