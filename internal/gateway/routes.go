package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mirrors the server API. Everything except /users needs a caller header.
func (h *Handler) Routes(userMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Group(func(r chi.Router) {
		r.Use(userMiddleware)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", h.createItem)
			r.Get("/", h.listItems)
			r.Get("/search", h.searchItems)
			r.Get("/{id}", h.getItem)
			r.Patch("/{id}", h.updateItem)
			r.Delete("/{id}", h.deleteItem)
			r.Post("/{id}/comment", h.addComment)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.createBooking)
			r.Get("/", h.listBookings)
			r.Get("/owner", h.listOwnerBookings)
			r.Get("/owner/export", h.exportOwnerBookings)
			r.Get("/{id}", h.getBooking)
			r.Patch("/{id}", h.decideBooking)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.createRequest)
			r.Get("/", h.listOwnRequests)
			r.Get("/all", h.listAllRequests)
			r.Get("/{id}", h.getRequest)
		})
	})

	return r
}
