package response

import (
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Position is a player's encrypted coordinates. Only handles are exposed.
type Position struct {
	PlayerID  string    `json:"player_id"`
	X         string    `json:"x"`
	Y         string    `json:"y"`
	Moves     int       `json:"moves"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PositionFromRecord converts a model.PlayerRecord
func PositionFromRecord(r *model.PlayerRecord) Position {
	return Position{
		PlayerID:  string(r.PlayerID),
		X:         r.X.String(),
		Y:         r.Y.String(),
		Moves:     r.Moves,
		JoinedAt:  r.JoinedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Joined answers a membership query
type Joined struct {
	PlayerID string `json:"player_id"`
	Joined   bool   `json:"joined"`
}

// Limits is the inclusive board range
type Limits struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// Event is a ledger event as streamed and listed
type Event struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PlayerID  string    `json:"player_id"`
	X         string    `json:"x"`
	Y         string    `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

// EventFromModel converts a model.Event
func EventFromModel(e *model.Event) Event {
	return Event{
		Seq:       e.Seq,
		ID:        e.ID,
		Type:      string(e.Type),
		PlayerID:  string(e.PlayerID),
		X:         e.X.String(),
		Y:         e.Y.String(),
		Timestamp: e.Timestamp,
	}
}

// EventsFromModel converts a page of events
func EventsFromModel(events []*model.Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = EventFromModel(e)
	}
	return out
}

// EventLog is a page of the persisted event log
type EventLog struct {
	Events []Event `json:"events"`
	Next   int64   `json:"next"`
}

// RelayerKeys describes where and for whom inputs are sealed
type RelayerKeys struct {
	PublicKey string `json:"public_key"`
	Contract  string `json:"contract"`
}

// RelayerKeysFrom builds the key response
func RelayerKeysFrom(pub [32]byte, contract string) RelayerKeys {
	return RelayerKeys{
		PublicKey: hex.EncodeToString(pub[:]),
		Contract:  contract,
	}
}

// VerifiedInput is a handle and proof ready for submission
type VerifiedInput struct {
	Handle string `json:"handle"`
	Proof  string `json:"proof"`
}

// VerifiedInputFrom converts a relayer result
func VerifiedInputFrom(v *relayer.VerifiedInput) VerifiedInput {
	return VerifiedInput{
		Handle: v.Handle.String(),
		Proof:  base64.StdEncoding.EncodeToString(v.Proof),
	}
}

// DecryptedValue is one plaintext, or a value sealed to the caller's key
type DecryptedValue struct {
	Handle string `json:"handle"`
	Value  *uint8 `json:"value,omitempty"`
	Sealed string `json:"sealed,omitempty"`
}

// Decryption is the response to a user decryption request
type Decryption struct {
	Values []DecryptedValue `json:"values"`
}

// Health reports server status
type Health struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}
