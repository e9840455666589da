package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/web/middleware"
	"github.com/mcoot/hiddengrid/internal/web/views"
)

// HomeHandler handles the home page
type HomeHandler struct {
	grid   *grid.Controller
	logger *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(controller *grid.Controller, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{grid: controller, logger: logger}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data, err := homeData(r.Context(), h.grid, middleware.GetPlayer(r.Context()))
	if err != nil {
		h.logger.Error("failed to load board", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Flash = middleware.GetFlash(r.Context())
	data.Next = r.URL.Query().Get("next")

	render(w, r, views.Home(data))
}

// homeData collects what the board page shows for player, who may be nil
func homeData(ctx context.Context, controller *grid.Controller, player *model.Player) (views.HomeData, error) {
	lo, hi := controller.BoardLimits()
	data := views.HomeData{
		PageData: views.PageData{Title: "Board", Player: player},
		Min:      lo,
		Max:      hi,
	}

	count, err := controller.PlayerCount(ctx)
	if err != nil {
		return data, err
	}
	data.Players = count

	if player == nil {
		return data, nil
	}

	record, err := controller.GetRecord(ctx, player.ID)
	switch {
	case errors.Is(err, model.ErrUnknownPlayer):
		return data, nil
	case err != nil:
		return data, err
	}
	data.Position = &views.PositionView{
		X:     record.X.String(),
		Y:     record.Y.String(),
		Moves: record.Moves,
	}
	return data, nil
}
