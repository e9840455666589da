package model

import (
	"time"

	"github.com/mcoot/hiddengrid/internal/fhe"
)

// Board limits, inclusive on both ends
const (
	MinCoord uint8 = 1
	MaxCoord uint8 = 10
)

// Direction is the canonical movement code after reduction modulo DirectionCount
type Direction uint8

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// DirectionCount is the modulus applied to raw direction codes
const DirectionCount = 4

var directionNames = map[Direction]string{
	DirectionUp:    "up",
	DirectionDown:  "down",
	DirectionLeft:  "left",
	DirectionRight: "right",
}

// String returns the lowercase direction name
func (d Direction) String() string {
	if name, ok := directionNames[d%DirectionCount]; ok {
		return name
	}
	return "unknown"
}

// ParseDirection maps a direction name to its code
func ParseDirection(name string) (Direction, bool) {
	for d, n := range directionNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}

// EncryptedPosition is a coordinate pair whose plaintext never leaves the executor
type EncryptedPosition struct {
	X fhe.Euint8
	Y fhe.Euint8
}

// PlayerRecord is a player's membership and current encrypted position.
// Created on first join and never deleted.
type PlayerRecord struct {
	PlayerID  PlayerID
	Joined    bool
	X         fhe.Handle
	Y         fhe.Handle
	Moves     int
	JoinedAt  time.Time
	UpdatedAt time.Time
}

// Position returns the record's coordinates as encrypted values
func (r *PlayerRecord) Position() EncryptedPosition {
	return EncryptedPosition{
		X: fhe.Euint8FromHandle(r.X),
		Y: fhe.Euint8FromHandle(r.Y),
	}
}
