package room

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/db"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 10
)

type Service struct {
	db *sql.DB
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn}
}

// GenerateCode returns a random 6-character room code.
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}

// CreateRoom inserts a room and the host's seat-1 membership in one
// transaction. Code uniqueness is enforced by the UNIQUE constraint; a
// collision aborts the attempt and a fresh code is tried, up to the bound.
func (s *Service) CreateRoom(hostUserID uuid.UUID) (db.Room, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return db.Room{}, err
		}

		room, err := s.insertRoom(hostUserID, code)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				log.Warnf("Room code collision on %s, regenerating", code)
				continue
			}
			return db.Room{}, err
		}
		return room, nil
	}
	return db.Room{}, ErrCodeSpaceExhausted
}

func (s *Service) insertRoom(hostUserID uuid.UUID, code string) (db.Room, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return db.Room{}, err
	}
	defer tx.Rollback()

	roomID := uuid.New()
	var room db.Room
	err = tx.QueryRow(`
		INSERT INTO game_rooms (id, code, host_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, code, host_user_id, status, created_at
	`, roomID, code, hostUserID, db.StatusWaiting, time.Now()).
		Scan(&room.ID, &room.Code, &room.HostUserID, &room.Status, &room.CreatedAt)
	if err != nil {
		return db.Room{}, err
	}

	_, err = tx.Exec(`
		INSERT INTO room_players (room_id, user_id, seat, joined_at)
		VALUES ($1, $2, 1, $3)
	`, room.ID, hostUserID, time.Now())
	if err != nil {
		return db.Room{}, err
	}

	if err := tx.Commit(); err != nil {
		return db.Room{}, err
	}
	return room, nil
}

// JoinRoom seats a user in a waiting room. Joining a room the user is
// already in returns the existing seat unchanged.
func (s *Service) JoinRoom(code string, userID uuid.UUID) (db.Room, int, error) {
	var room db.Room
	err := s.db.QueryRow(`
		SELECT id, code, host_user_id, status, created_at
		FROM game_rooms
		WHERE code = $1 AND status = $2
	`, strings.ToUpper(code), db.StatusWaiting).
		Scan(&room.ID, &room.Code, &room.HostUserID, &room.Status, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Room{}, 0, ErrRoomNotFound
	}
	if err != nil {
		return db.Room{}, 0, err
	}

	var seat int
	err = s.db.QueryRow(`
		SELECT seat FROM room_players WHERE room_id = $1 AND user_id = $2
	`, room.ID, userID).Scan(&seat)
	if err == nil {
		return room, seat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Room{}, 0, err
	}

	var count int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM room_players WHERE room_id = $1
	`, room.ID).Scan(&count); err != nil {
		return db.Room{}, 0, err
	}
	if count >= 2 {
		return db.Room{}, 0, ErrRoomFull
	}

	_, err = s.db.Exec(`
		INSERT INTO room_players (room_id, user_id, seat, joined_at)
		VALUES ($1, $2, 2, $3)
	`, room.ID, userID, time.Now())
	if err != nil {
		// Two guests racing past the count check collide on the seat
		// constraint; the loser is told the room is full.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return db.Room{}, 0, ErrRoomFull
		}
		return db.Room{}, 0, err
	}
	return room, 2, nil
}

// GetRoom returns the room and its members ordered by seat.
func (s *Service) GetRoom(roomID uuid.UUID) (db.Room, []db.RoomMember, error) {
	var room db.Room
	err := s.db.QueryRow(`
		SELECT id, code, host_user_id, status, created_at
		FROM game_rooms
		WHERE id = $1
	`, roomID).Scan(&room.ID, &room.Code, &room.HostUserID, &room.Status, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Room{}, nil, ErrRoomNotFound
	}
	if err != nil {
		return db.Room{}, nil, err
	}

	members, err := s.Members(roomID)
	if err != nil {
		return db.Room{}, nil, err
	}
	return room, members, nil
}

func (s *Service) Members(roomID uuid.UUID) ([]db.RoomMember, error) {
	rows, err := s.db.Query(`
		SELECT rp.seat, u.id, u.username
		FROM room_players rp
		JOIN users u ON rp.user_id = u.id
		WHERE rp.room_id = $1
		ORDER BY rp.seat
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []db.RoomMember
	for rows.Next() {
		var m db.RoomMember
		if err := rows.Scan(&m.Seat, &m.UserID, &m.Username); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Membership returns the seat a user holds in a room, if any. The gateway
// binds a connection only when this row exists.
func (s *Service) Membership(roomID, userID uuid.UUID) (db.Membership, error) {
	var m db.Membership
	err := s.db.QueryRow(`
		SELECT room_id, user_id, seat, joined_at
		FROM room_players
		WHERE room_id = $1 AND user_id = $2
	`, roomID, userID).Scan(&m.RoomID, &m.UserID, &m.Seat, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Membership{}, ErrRoomNotFound
	}
	if err != nil {
		return db.Membership{}, err
	}
	return m, nil
}

// IsHost re-checks host status against the store. Called per host-only
// event rather than trusting the flag cached at bind time.
func (s *Service) IsHost(roomID, userID uuid.UUID) (bool, error) {
	var hostID uuid.UUID
	err := s.db.QueryRow(`
		SELECT host_user_id FROM game_rooms WHERE id = $1
	`, roomID).Scan(&hostID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrRoomNotFound
	}
	if err != nil {
		return false, err
	}
	return hostID == userID, nil
}

// CloseRoom deletes the room; memberships go with it via the FK cascade.
func (s *Service) CloseRoom(roomID, requesterID uuid.UUID) error {
	host, err := s.IsHost(roomID, requesterID)
	if err != nil {
		return err
	}
	if !host {
		return ErrForbidden
	}
	_, err = s.db.Exec(`DELETE FROM game_rooms WHERE id = $1`, roomID)
	return err
}

// UpdateStatus writes a status without a host check. The gateway uses it
// for match.end, which either peer may report.
func (s *Service) UpdateStatus(roomID uuid.UUID, status db.RoomStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	_, err := s.db.Exec(`UPDATE game_rooms SET status = $1 WHERE id = $2`, status, roomID)
	return err
}

func (s *Service) SetStatus(roomID, requesterID uuid.UUID, status db.RoomStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	host, err := s.IsHost(roomID, requesterID)
	if err != nil {
		return err
	}
	if !host {
		return ErrForbidden
	}
	_, err = s.db.Exec(`UPDATE game_rooms SET status = $1 WHERE id = $2`, status, roomID)
	return err
}
