package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	sharedmw "github.com/mcoot/hiddengrid/internal/middleware"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/services/grid"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
	"github.com/mcoot/hiddengrid/internal/web/handler"
	"github.com/mcoot/hiddengrid/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	GridController  *grid.Controller
	RelayerService  *relayer.Service
	SessionDuration time.Duration
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)

	// Apply global middleware to all routes
	r.Use(sharedmw.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(sharedmw.Logging(cfg.Logger))

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.GridController, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.SessionDuration)
	gridHandler := handler.NewGridHandler(cfg.GridController, cfg.RelayerService, cfg.Logger)

	// Public routes (optional auth for showing player info in nav)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)

	// Auth actions (no auth required)
	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.Use(flashMiddleware)
	authRoutes.Use(optionalAuthMiddleware)
	authRoutes.HandleFunc("/guest", authHandler.CreateGuest).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Grid actions (require auth)
	gridRoutes := r.PathPrefix("/grid").Subrouter()
	gridRoutes.Use(flashMiddleware)
	gridRoutes.Use(authMiddleware)
	gridRoutes.HandleFunc("/join", gridHandler.Join).Methods(http.MethodPost)
	gridRoutes.HandleFunc("/move", gridHandler.Move).Methods(http.MethodPost)
	gridRoutes.HandleFunc("/reveal", gridHandler.Reveal).Methods(http.MethodPost)

	return r
}
