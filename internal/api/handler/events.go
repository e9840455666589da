package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/hiddengrid/internal/api/middleware"
	"github.com/mcoot/hiddengrid/internal/api/response"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/stream"
)

const (
	defaultEventPage = 50
	maxEventPage     = 500
)

// EventsHandler serves the live event stream and the persisted log
type EventsHandler struct {
	controller *grid.Controller
	hub        *stream.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(controller *grid.Controller, hub *stream.Hub) *EventsHandler {
	return &EventsHandler{controller: controller, hub: hub}
}

// SSE handles GET /api/v1/events
func (h *EventsHandler) SSE(w http.ResponseWriter, r *http.Request) {
	filter, ok := playerFilter(w, r)
	if !ok {
		return
	}
	stream.ServeSSE(w, r, h.hub, viewerID(r), filter)
}

// WebSocket handles GET /api/v1/events/ws
func (h *EventsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	filter, ok := playerFilter(w, r)
	if !ok {
		return
	}
	stream.ServeWS(w, r, h.hub, viewerID(r), filter)
}

// Log handles GET /api/v1/events/log?from=&limit=
func (h *EventsHandler) Log(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", 1)
	if err != nil || from < 1 {
		WriteError(w, NewInvalidRequestError("from must be a positive integer"))
		return
	}
	limit, err := queryInt(r, "limit", defaultEventPage)
	if err != nil || limit < 1 || limit > maxEventPage {
		WriteError(w, NewInvalidRequestError("limit must be between 1 and 500"))
		return
	}

	events, err := h.controller.Events(r.Context(), int64(from), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	next := int64(from)
	if len(events) > 0 {
		next = events[len(events)-1].Seq + 1
	}
	response.JSON(w, http.StatusOK, response.EventLog{
		Events: response.EventsFromModel(events),
		Next:   next,
	})
}

func viewerID(r *http.Request) model.PlayerID {
	if player := middleware.GetPlayer(r.Context()); player != nil {
		return player.ID
	}
	return ""
}

// playerFilter reads the optional ?player= filter
func playerFilter(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	raw := r.URL.Query().Get("player")
	if raw == "" {
		return "", true
	}
	id, err := model.ParsePlayerID(raw)
	if err != nil {
		WriteError(w, err)
		return "", false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
