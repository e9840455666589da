package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/mcoot/hiddengrid/internal/api/response"
	"github.com/mcoot/hiddengrid/internal/model"
)

// Broadcaster publishes ledger events to the hub
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "stream-broadcaster")),
	}
}

// Publish sends event to every subscribed client. Only handles travel;
// coordinates stay encrypted.
func (b *Broadcaster) Publish(_ context.Context, event *model.Event) {
	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		b.logger.Error("stream failed to encode event",
			slog.String("event_id", event.ID),
			slog.Any("error", err))
		return
	}
	b.hub.Broadcast(Message{
		ID:       strconv.FormatInt(event.Seq, 10),
		Name:     string(event.Type),
		Data:     data,
		PlayerID: event.PlayerID,
	})
}
