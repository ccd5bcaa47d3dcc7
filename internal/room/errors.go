package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found or already in progress")
	ErrRoomFull           = errors.New("room is full")
	ErrForbidden          = errors.New("only the host can do that")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrCodeSpaceExhausted = errors.New("failed to generate unique room code")
)
