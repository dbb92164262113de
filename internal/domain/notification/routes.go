package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers the notification stream
func (h *Handler) Routes(userMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(userMiddleware).Get("/", h.WebSocket)
	return r
}
