package model

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// PlayerID is the account address of a participant (0x-prefixed, 20 bytes hex)
type PlayerID string

// Player represents a game participant
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrInvalidPlayerID is returned for strings that are not account addresses
var ErrInvalidPlayerID = errors.New("invalid player id")

const addressHexLen = 40

// ParsePlayerID validates an account address and lowercases it
func ParsePlayerID(s string) (PlayerID, error) {
	if len(s) != 2+addressHexLen || !strings.HasPrefix(s, "0x") {
		return "", ErrInvalidPlayerID
	}
	lower := strings.ToLower(s)
	if _, err := hex.DecodeString(lower[2:]); err != nil {
		return "", ErrInvalidPlayerID
	}
	return PlayerID(lower), nil
}
