package user

import (
	"strings"

	"github.com/shareit/shareit-api/internal/pkg/validator"
)

// CreateRequest for POST /users
type CreateRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=255"`
	Email string `json:"email" validate:"required,email,max=512"`
}

// UpdateRequest for PATCH /users/{id}. Blank fields are left unchanged.
type UpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=255"`
	Email *string `json:"email" validate:"omitempty,max=512"`
}

// Normalize drops blank fields so they do not overwrite stored values.
func (r *UpdateRequest) Normalize() {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		r.Name = nil
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		r.Email = nil
	}
}

// Validate checks fields the struct tags cannot, since a blank email is allowed. Call after Normalize.
func (r *UpdateRequest) Validate() map[string]string {
	if r.Email != nil && validator.ValidateVar(strings.TrimSpace(*r.Email), "email") != nil {
		return map[string]string{"email": "Invalid email format"}
	}
	return nil
}

// Response represents user in API response
type Response struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ResponseFromEntity maps a user to its API form
func ResponseFromEntity(u *User) *Response {
	return &Response{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ResponsesFromEntities maps a slice of users
func ResponsesFromEntities(users []*User) []*Response {
	out := make([]*Response, 0, len(users))
	for _, u := range users {
		out = append(out, ResponseFromEntity(u))
	}
	return out
}
