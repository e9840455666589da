package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
	"github.com/mcoot/hiddengrid/internal/web/middleware"
	"github.com/mcoot/hiddengrid/internal/web/views"
)

// GridHandler handles joining, moving and revealing from the browser.
// The server seals inputs on the player's behalf through the relayer.
type GridHandler struct {
	grid    *grid.Controller
	relayer *relayer.Service
	logger  *slog.Logger
}

// NewGridHandler creates a new GridHandler
func NewGridHandler(controller *grid.Controller, relayerService *relayer.Service, logger *slog.Logger) *GridHandler {
	return &GridHandler{
		grid:    controller,
		relayer: relayerService,
		logger:  logger,
	}
}

// Join places the player on the board
func (h *GridHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	if _, err := h.grid.Join(r.Context(), player.ID); err != nil {
		middleware.SetFlash(w, "error", h.describe(err))
	} else {
		middleware.SetFlash(w, "success", "You joined the board")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Move submits one encrypted step
func (h *GridHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	dir, ok := model.ParseDirection(strings.ToLower(strings.TrimSpace(r.FormValue("direction"))))
	if !ok {
		middleware.SetFlash(w, "error", "Unknown direction")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	input, err := h.relayer.EncryptFor(r.Context(), uint8(dir), player.ID)
	if err == nil {
		_, err = h.grid.Move(r.Context(), player.ID, input.Handle, input.Proof)
	}
	if err != nil {
		middleware.SetFlash(w, "error", h.describe(err))
	} else {
		middleware.SetFlash(w, "success", "Moved "+dir.String())
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reveal decrypts the player's own position and renders it in place.
// Plaintext never goes into a cookie or redirect.
func (h *GridHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	data, err := homeData(r.Context(), h.grid, player)
	if err != nil {
		middleware.SetFlash(w, "error", h.describe(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if data.Position == nil {
		middleware.SetFlash(w, "error", h.describe(model.ErrUnknownPlayer))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	x, errX := fhe.ParseHandle(data.Position.X)
	y, errY := fhe.ParseHandle(data.Position.Y)
	if err := errors.Join(errX, errY); err != nil {
		middleware.SetFlash(w, "error", h.describe(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	values, err := h.relayer.UserDecrypt(r.Context(), []fhe.Handle{x, y}, player.ID)
	if err != nil {
		middleware.SetFlash(w, "error", h.describe(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data.Revealed = &views.Revealed{X: values[0], Y: values[1]}
	render(w, r, views.Home(data))
}

// describe turns an error into a message fit for a flash
func (h *GridHandler) describe(err error) string {
	switch {
	case errors.Is(err, model.ErrAlreadyJoined):
		return "You are already on the board"
	case errors.Is(err, model.ErrNotJoined):
		return "Join the board before moving"
	case errors.Is(err, model.ErrUnknownPlayer):
		return "You are not on the board yet"
	case errors.Is(err, fhe.ErrInvalidProof):
		return "Your move could not be verified"
	case errors.Is(err, fhe.ErrACLDenied):
		return "You are not allowed to see that"
	default:
		h.logger.Error("grid action failed", slog.Any("error", err))
		return "Something went wrong, please try again"
	}
}
