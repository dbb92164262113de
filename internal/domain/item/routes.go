package item

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers item and comment routes
func (h *Handler) Routes(userMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(userMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.ListOwn)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/comment", h.AddComment)
	})

	return r
}
