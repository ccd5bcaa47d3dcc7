package db

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // Hashed password
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusPlaying, StatusFinished:
		return true
	}
	return false
}

type Room struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	HostUserID uuid.UUID  `json:"host_user_id" db:"host_user_id"`
	Status     RoomStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type Membership struct {
	RoomID   uuid.UUID `json:"room_id" db:"room_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Seat     int       `json:"seat" db:"seat"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// RoomMember is the membership row joined with the user's name, ordered by seat.
type RoomMember struct {
	Seat     int       `json:"seat"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type MatchRecord struct {
	WinnerName   string    `json:"winner_name"`
	LoserName    string    `json:"loser_name"`
	WinnerHealth int       `json:"winner_health"`
	PlayedAt     time.Time `json:"played_at"`
}

type PlayerStats struct {
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}
