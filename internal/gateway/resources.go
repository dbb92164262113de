package gateway

import (
	"fmt"
	"net/http"

	"github.com/shareit/shareit-api/internal/domain/booking"
	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/domain/itemrequest"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/response"
)

// pathID validates the {id} parameter and builds the server path from it.
func pathID(w http.ResponseWriter, r *http.Request, format, what string) (string, bool) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid "+what+" ID")
		return "", false
	}
	return fmt.Sprintf(format, id), true
}

func validPage(w http.ResponseWriter, r *http.Request, defaultSize int) bool {
	if _, err := pagination.Parse(r.URL.Query(), defaultSize); err != nil {
		response.BadRequest(w, pagination.Message)
		return false
	}
	return true
}

// Users

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateRequest
	if body, ok := h.readBody(w, r, &req); ok {
		h.forward(w, r, "/users", body)
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, "/users", nil)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/users/%d", "user"); ok {
		h.forward(w, r, path, nil)
	}
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	path, ok := pathID(w, r, "/users/%d", "user")
	if !ok {
		return
	}
	var req user.UpdateRequest
	body, ok := h.readBody(w, r, &req)
	if !ok {
		return
	}
	req.Normalize()
	if errs := req.Validate(); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}
	h.forward(w, r, path, body)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/users/%d", "user"); ok {
		h.forward(w, r, path, nil)
	}
}

// Items

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req item.CreateItemRequest
	if body, ok := h.readBody(w, r, &req); ok {
		h.forward(w, r, "/items", body)
	}
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	if validPage(w, r, pagination.DefaultSize) {
		h.forward(w, r, "/items", nil)
	}
}

func (h *Handler) searchItems(w http.ResponseWriter, r *http.Request) {
	if validPage(w, r, pagination.DefaultSize) {
		h.forward(w, r, "/items/search", nil)
	}
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/items/%d", "item"); ok {
		h.forward(w, r, path, nil)
	}
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	path, ok := pathID(w, r, "/items/%d", "item")
	if !ok {
		return
	}
	var req item.UpdateItemRequest
	if body, ok := h.readBody(w, r, &req); ok {
		h.forward(w, r, path, body)
	}
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/items/%d", "item"); ok {
		h.forward(w, r, path, nil)
	}
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	path, ok := pathID(w, r, "/items/%d/comment", "item")
	if !ok {
		return
	}
	var req item.CreateCommentRequest
	if body, ok := h.readBody(w, r, &req); ok {
		h.forward(w, r, path, body)
	}
}

// Bookings

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateRequest
	body, ok := h.readBody(w, r, &req)
	if !ok {
		return
	}
	if errs := req.Validate(h.now().UTC()); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}
	h.forward(w, r, "/bookings", body)
}

func (h *Handler) decideBooking(w http.ResponseWriter, r *http.Request) {
	path, ok := pathID(w, r, "/bookings/%d", "booking")
	if !ok {
		return
	}
	if _, err := params.Bool(r.URL.Query().Get("approved")); err != nil {
		response.BadRequest(w, "Query parameter approved must be true or false")
		return
	}
	h.forward(w, r, path, nil)
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/bookings/%d", "booking"); ok {
		h.forward(w, r, path, nil)
	}
}

func (h *Handler) validListing(w http.ResponseWriter, r *http.Request) bool {
	raw := r.URL.Query().Get("state")
	if _, err := booking.ParseState(raw); err != nil {
		response.BadRequest(w, "Unknown state: "+raw)
		return false
	}
	return validPage(w, r, pagination.DefaultBookingSize)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	if h.validListing(w, r) {
		h.forward(w, r, "/bookings", nil)
	}
}

func (h *Handler) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	if h.validListing(w, r) {
		h.forward(w, r, "/bookings/owner", nil)
	}
}

func (h *Handler) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("state")
	if _, err := booking.ParseState(raw); err != nil {
		response.BadRequest(w, "Unknown state: "+raw)
		return
	}
	h.forward(w, r, "/bookings/owner/export", nil)
}

// Item requests

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var req itemrequest.CreateRequest
	if body, ok := h.readBody(w, r, &req); ok {
		h.forward(w, r, "/requests", body)
	}
}

func (h *Handler) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, "/requests", nil)
}

func (h *Handler) listAllRequests(w http.ResponseWriter, r *http.Request) {
	if validPage(w, r, pagination.DefaultSize) {
		h.forward(w, r, "/requests/all", nil)
	}
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	if path, ok := pathID(w, r, "/requests/%d", "request"); ok {
		h.forward(w, r, path, nil)
	}
}
