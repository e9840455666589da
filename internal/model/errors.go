package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Grid errors
	ErrAlreadyJoined  = errors.New("player has already joined")
	ErrNotJoined      = errors.New("player has not joined")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrRecordNotFound = errors.New("player record not found")
)
