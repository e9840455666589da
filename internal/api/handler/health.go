package handler

import (
	"net/http"

	"github.com/mcoot/hiddengrid/internal/api/response"
	"github.com/mcoot/hiddengrid/internal/services/grid"
)

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	controller *grid.Controller
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(controller *grid.Controller) *HealthHandler {
	return &HealthHandler{controller: controller}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.controller.PlayerCount(r.Context())
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Players: count})
}
