package itemrequest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers item request routes
func (h *Handler) Routes(userMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(userMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.ListOwn)
		r.Get("/all", h.ListAll)
		r.Get("/{id}", h.Get)
	})

	return r
}
