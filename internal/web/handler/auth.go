package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/web/middleware"
)

// AuthHandler handles authentication actions
type AuthHandler struct {
	authService *auth.Service
	cookieAge   time.Duration
}

// NewAuthHandler creates a new AuthHandler. Cookies live as long as sessions.
func NewAuthHandler(authService *auth.Service, sessionDuration time.Duration) *AuthHandler {
	if sessionDuration <= 0 {
		sessionDuration = auth.DefaultConfig().SessionDuration
	}
	return &AuthHandler{
		authService: authService,
		cookieAge:   sessionDuration,
	}
}

// CreateGuest handles guest player creation
func (h *AuthHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	next := r.FormValue("next")

	if displayName == "" {
		middleware.SetFlash(w, "error", "Display name is required")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), displayName)
	if err != nil {
		msg := "Failed to create guest player"
		if errors.Is(err, auth.ErrInvalidDisplayName) {
			msg = "Display name must be 1 to 32 characters"
		}
		middleware.SetFlash(w, "error", msg)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, session.Token)
	middleware.SetFlash(w, "success", "Welcome, "+session.Player.DisplayName+"!")

	// Only local paths; anything else could bounce the player off-site
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		http.Redirect(w, r, next, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
