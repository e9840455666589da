package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hiddengrid/internal/api/handler"
	"github.com/mcoot/hiddengrid/internal/api/middleware"
	sharedmw "github.com/mcoot/hiddengrid/internal/middleware"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
	"github.com/mcoot/hiddengrid/internal/stream"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GridController *grid.Controller
	RelayerService *relayer.Service
	Hub            *stream.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	gridHandler := handler.NewGridHandler(cfg.GridController)
	relayerHandler := handler.NewRelayerHandler(cfg.RelayerService)
	eventsHandler := handler.NewEventsHandler(cfg.GridController, cfg.Hub)
	healthHandler := handler.NewHealthHandler(cfg.GridController)

	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.RequestID())
	api.Use(sharedmw.Recovery(cfg.Logger, handler.Panic))
	api.Use(sharedmw.Logging(cfg.Logger))

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Public grid queries
	api.HandleFunc("/grid/limits", gridHandler.Limits).Methods(http.MethodGet)
	api.HandleFunc("/grid/players/{id}/position", gridHandler.GetPosition).Methods(http.MethodGet)
	api.HandleFunc("/grid/players/{id}/joined", gridHandler.HasJoined).Methods(http.MethodGet)

	// Grid actions act as the authenticated player
	gridProtected := api.PathPrefix("/grid").Subrouter()
	gridProtected.Use(authMiddleware)
	gridProtected.HandleFunc("/join", gridHandler.Join).Methods(http.MethodPost)
	gridProtected.HandleFunc("/move", gridHandler.Move).Methods(http.MethodPost)

	// Relayer
	api.HandleFunc("/relayer/keys", relayerHandler.Keys).Methods(http.MethodGet)
	relayerProtected := api.PathPrefix("/relayer").Subrouter()
	relayerProtected.Use(authMiddleware)
	relayerProtected.HandleFunc("/inputs", relayerHandler.VerifyInput).Methods(http.MethodPost)
	relayerProtected.HandleFunc("/decrypt", relayerHandler.Decrypt).Methods(http.MethodPost)

	// Events carry only handles, so anyone may watch
	events := api.PathPrefix("/events").Subrouter()
	events.Use(optionalAuthMiddleware)
	events.HandleFunc("", eventsHandler.SSE).Methods(http.MethodGet)
	events.HandleFunc("/ws", eventsHandler.WebSocket).Methods(http.MethodGet)
	events.HandleFunc("/log", eventsHandler.Log).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	return r
}
