package stream

import (
	"time"

	"github.com/mcoot/hiddengrid/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a WebSocket peer
	pongWait = pingPeriod * 2

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one connected subscriber
type Client struct {
	hub         *Hub
	transport   string
	viewer      model.PlayerID
	filter      model.PlayerID
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a client. A non-empty filter limits delivery to one
// player's events.
func NewClient(hub *Hub, transport string, viewer, filter model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		transport:   transport,
		viewer:      viewer,
		filter:      filter,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

func (c *Client) wants(m Message) bool {
	return c.filter == "" || c.filter == m.PlayerID
}
