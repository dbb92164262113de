package itemrequest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/validator"
)

// Handler handles item request HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates item request handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /requests
// @Summary Announce a wanted item
// @Tags Request
// @Accept json
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param request body CreateRequest true "Request"
// @Success 201 {object} response.Response{data=Response}
// @Failure 400,404,500 {object} response.Response
// @Router /requests [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
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

// ListOwn handles GET /requests
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListOwn(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ListAll handles GET /requests/all
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query(), pagination.DefaultSize)
	if err != nil {
		response.BadRequest(w, pagination.Message)
		return
	}

	out, err := h.service.ListOthers(r.Context(), middleware.GetUserID(r.Context()), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Get handles GET /requests/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	out, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(w, "Item request not found")
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
