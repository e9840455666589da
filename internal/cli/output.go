package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Position:
		o.printPosition(v)
	case Joined:
		fmt.Fprintf(o.w, "Player %s joined: %t\n", v.PlayerID, v.Joined)
	case Limits:
		fmt.Fprintf(o.w, "Board: %d to %d on both axes\n", v.Min, v.Max)
	case Revealed:
		o.printRevealed(v)
	case EventLog:
		o.printEventLog(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\nPlayers: %d\n", v.Status, v.Players)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Position is a player's encrypted coordinates
type Position struct {
	PlayerID  string    `json:"player_id"`
	X         string    `json:"x"`
	Y         string    `json:"y"`
	Moves     int       `json:"moves"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Joined response type
type Joined struct {
	PlayerID string `json:"player_id"`
	Joined   bool   `json:"joined"`
}

// Limits response type
type Limits struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// Revealed is a position decrypted locally
type Revealed struct {
	X   uint8 `json:"x"`
	Y   uint8 `json:"y"`
	Min uint8 `json:"-"`
	Max uint8 `json:"-"`
}

// Event response type
type Event struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PlayerID  string    `json:"player_id"`
	X         string    `json:"x"`
	Y         string    `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

// EventLog response type
type EventLog struct {
	Events []Event `json:"events"`
	Next   int64   `json:"next"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printPosition(p Position) {
	fmt.Fprintf(o.w, "Player: %s\n", p.PlayerID)
	fmt.Fprintf(o.w, "X: %s\n", p.X)
	fmt.Fprintf(o.w, "Y: %s\n", p.Y)
	fmt.Fprintf(o.w, "Moves: %d\n", p.Moves)
}

// printRevealed draws the board with the top row at Max
func (o *Output) printRevealed(r Revealed) {
	fmt.Fprintf(o.w, "Position: (%d, %d)\n", r.X, r.Y)
	if r.Max == 0 {
		return
	}
	for y := int(r.Max); y >= int(r.Min); y-- {
		var row strings.Builder
		fmt.Fprintf(&row, "%3d |", y)
		for x := int(r.Min); x <= int(r.Max); x++ {
			if x == int(r.X) && y == int(r.Y) {
				row.WriteString(" @")
			} else {
				row.WriteString(" .")
			}
		}
		fmt.Fprintln(o.w, row.String())
	}
}

func (o *Output) printEventLog(l EventLog) {
	for _, e := range l.Events {
		fmt.Fprintf(o.w, "#%d %s %s %s\n", e.Seq, e.Timestamp.Format(time.RFC3339), e.Type, e.PlayerID)
	}
	fmt.Fprintf(o.w, "Next: %d\n", l.Next)
}
