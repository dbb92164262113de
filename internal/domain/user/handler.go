package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/validator"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /users
// @Summary Register user
// @Tags User
// @Accept json
// @Produce json
// @Param request body CreateRequest true "User"
// @Success 201 {object} response.Response{data=Response}
// @Failure 400,409,500 {object} response.Response
// @Router /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, ResponseFromEntity(user))
}

// Update handles PATCH /users/{id}
// @Summary Update user
// @Tags User
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} response.Response{data=Response}
// @Failure 400,404,409,500 {object} response.Response
// @Router /users/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, ResponseFromEntity(user))
}

// Get handles GET /users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, ResponseFromEntity(user))
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, ResponsesFromEntities(users))
}

// Delete handles DELETE /users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrEmailExists):
		response.Conflict(w, "Email already exists")
	case errors.Is(err, ErrInvalidEmail):
		response.ValidationError(w, map[string]string{"email": "Invalid email format"})
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
