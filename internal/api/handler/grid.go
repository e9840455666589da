package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hiddengrid/internal/api/middleware"
	"github.com/mcoot/hiddengrid/internal/api/request"
	"github.com/mcoot/hiddengrid/internal/api/response"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/grid"
)

// GridHandler handles board membership and movement
type GridHandler struct {
	controller *grid.Controller
}

// NewGridHandler creates a new grid handler
func NewGridHandler(controller *grid.Controller) *GridHandler {
	return &GridHandler{controller: controller}
}

// Join handles POST /api/v1/grid/join
func (h *GridHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	record, err := h.controller.Join(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PositionFromRecord(record))
}

// Move handles POST /api/v1/grid/move
func (h *GridHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	req, ok := decodeBody[request.MoveRequest](w, r)
	if !ok {
		return
	}

	// Malformed input is an invalid proof, same as a forged one
	handle, err := fhe.ParseHandle(req.Handle)
	if err != nil {
		WriteError(w, fhe.ErrInvalidProof)
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		WriteError(w, fhe.ErrInvalidProof)
		return
	}

	record, err := h.controller.Move(r.Context(), player.ID, handle, proof)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromRecord(record))
}

// GetPosition handles GET /api/v1/grid/players/{id}/position
func (h *GridHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	playerID, err := model.ParsePlayerID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.controller.GetRecord(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromRecord(record))
}

// HasJoined handles GET /api/v1/grid/players/{id}/joined
func (h *GridHandler) HasJoined(w http.ResponseWriter, r *http.Request) {
	playerID, err := model.ParsePlayerID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	joined, err := h.controller.HasJoined(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Joined{PlayerID: string(playerID), Joined: joined})
}

// Limits handles GET /api/v1/grid/limits
func (h *GridHandler) Limits(w http.ResponseWriter, r *http.Request) {
	lo, hi := h.controller.BoardLimits()
	response.JSON(w, http.StatusOK, response.Limits{Min: lo, Max: hi})
}
