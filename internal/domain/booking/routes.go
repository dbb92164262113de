package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers booking routes
func (h *Handler) Routes(userMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(userMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.ListByBooker)
		r.Get("/owner", h.ListByOwner)
		r.Get("/owner/export", h.ExportOwner)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Decide)
	})

	return r
}
