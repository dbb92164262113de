package item

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

// Handler handles item HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates item handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /items
// @Summary List an item
// @Tags Item
// @Accept json
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param request body CreateItemRequest true "Item"
// @Success 201 {object} response.Response{data=ItemResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /items [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
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

// Update handles PATCH /items/{id}
// @Summary Update own item
// @Tags Item
// @Accept json
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param id path int true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} response.Response{data=ItemResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /items/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	out, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Get handles GET /items/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	out, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ListOwn handles GET /items
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query(), pagination.DefaultSize)
	if err != nil {
		response.BadRequest(w, pagination.Message)
		return
	}

	out, err := h.service.ListOwn(r.Context(), middleware.GetUserID(r.Context()), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Search handles GET /items/search?text=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query(), pagination.DefaultSize)
	if err != nil {
		response.BadRequest(w, pagination.Message)
		return
	}

	out, err := h.service.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Delete handles DELETE /items/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AddComment handles POST /items/{id}/comment
// @Summary Comment on a rented item
// @Tags Item
// @Accept json
// @Produce json
// @Param X-Sharer-User-Id header int true "Caller"
// @Param id path int true "Item ID"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} response.Response{data=CommentResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /items/{id}/comment [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	out, err := h.service.AddComment(r.Context(), middleware.GetUserID(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, out)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(w, "Item not found")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(w, "Item request not found")
	case errors.Is(err, ErrNotItemOwner):
		response.Forbidden(w, "Only the owner can change this item")
	case errors.Is(err, ErrCommentNotAllowed):
		response.BadRequest(w, "Only users who have completed a booking of this item can comment on it")
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
