package model

import (
	"time"

	"github.com/mcoot/hiddengrid/internal/fhe"
)

// EventType identifies the type of event
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventPlayerMoved  EventType = "player_moved"
)

// Event is a ledger notification. Coordinates are carried as handles only.
type Event struct {
	Seq       int64 // Assigned by storage on append, starting at 1
	ID        string
	Type      EventType
	PlayerID  PlayerID
	X         fhe.Handle
	Y         fhe.Handle
	Timestamp time.Time
}
