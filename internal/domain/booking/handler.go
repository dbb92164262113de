package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/export"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookings
// @Summary Request a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param request body CreateRequest true "Booking"
// @Success 201 {object} response.Response{data=Response}
// @Failure 400,404,500 {object} response.Response
// @Router /bookings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	errs := validator.Validate(&req)
	if errs == nil {
		errs = req.Validate(h.service.now().UTC())
	}
	if errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	out, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, out)
}

// Decide handles PATCH /bookings/{id}?approved=true|false
// @Summary Approve or reject a booking of own item
// @Tags Booking
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param id path int true "Booking ID"
// @Param approved query bool true "Decision"
// @Success 200 {object} response.Response{data=Response}
// @Failure 400,404,500 {object} response.Response
// @Router /bookings/{id} [patch]
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}
	approved, err := params.Bool(r.URL.Query().Get("approved"))
	if err != nil {
		response.BadRequest(w, "Query parameter approved must be true or false")
		return
	}

	out, err := h.service.Decide(r.Context(), middleware.GetUserID(r.Context()), id, approved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	out, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ListByBooker handles GET /bookings?state=&from=&size=
func (h *Handler) ListByBooker(w http.ResponseWriter, r *http.Request) {
	state, page, ok := parseListing(w, r)
	if !ok {
		return
	}

	out, err := h.service.ListByBooker(r.Context(), middleware.GetUserID(r.Context()), state, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ListByOwner handles GET /bookings/owner?state=&from=&size=
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	state, page, ok := parseListing(w, r)
	if !ok {
		return
	}

	out, err := h.service.ListByOwner(r.Context(), middleware.GetUserID(r.Context()), state, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ExportOwner handles GET /bookings/owner/export?state=
func (h *Handler) ExportOwner(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("state")
	state, err := ParseState(raw)
	if err != nil {
		response.BadRequest(w, "Unknown state: "+raw)
		return
	}

	userID := middleware.GetUserID(r.Context())
	data, err := h.service.ExportOwner(r.Context(), userID, state)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("bookings_%d_%s_%s.xlsx", userID, state, h.service.now().UTC().Format("20060102"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	response.Raw(w, http.StatusOK, export.ContentTypeXLSX, data)
}

func parseListing(w http.ResponseWriter, r *http.Request) (State, pagination.Page, bool) {
	raw := r.URL.Query().Get("state")
	state, err := ParseState(raw)
	if err != nil {
		response.BadRequest(w, "Unknown state: "+raw)
		return "", pagination.Page{}, false
	}

	page, err := pagination.Parse(r.URL.Query(), pagination.DefaultBookingSize)
	if err != nil {
		response.BadRequest(w, pagination.Message)
		return "", pagination.Page{}, false
	}
	return state, page, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrOwnItem):
		response.NotFound(w, "Item not found")
	case errors.Is(err, ErrItemUnavailable):
		response.BadRequest(w, "Item is not available for booking")
	case errors.Is(err, ErrStartInPast), errors.Is(err, ErrInvalidDateRange):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotWaiting):
		response.BadRequest(w, "Booking status has already been decided")
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
