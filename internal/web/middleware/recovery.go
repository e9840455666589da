package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/hiddengrid/internal/middleware"
	"github.com/mcoot/hiddengrid/internal/web/views"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

var errorBody = templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<h1>Internal Server Error</h1>`+
		`<p>Something went wrong. Please try again later.</p>`+
		`<p><a href="/">Return to the board</a></p>`)
	return err
})

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = views.Layout(views.PageData{Title: "Error"}, errorBody).Render(r.Context(), w)
}
