package item

import (
	"strings"
	"time"

	"github.com/shareit/shareit-api/internal/domain/itemrequest"
)

// CreateItemRequest for POST /items
type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"required,notblank,max=512"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"request_id" validate:"omitempty,gt=0"`
}

// UpdateItemRequest for PATCH /items/{id}. Absent or blank fields are left unchanged.
type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	Available   *bool   `json:"available"`
}

// Normalize drops blank text fields.
func (r *UpdateItemRequest) Normalize() {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		r.Name = nil
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		r.Description = nil
	}
}

// CreateCommentRequest for POST /items/{id}/comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

// CommentResponse represents comment in API response
type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemResponse represents item in API response.
// LastBooking and NextBooking are only set for the owner.
type ItemResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Available   bool               `json:"available"`
	OwnerID     int64              `json:"owner_id"`
	RequestID   *int64             `json:"request_id"`
	LastBooking *BookingShort      `json:"last_booking,omitempty"`
	NextBooking *BookingShort      `json:"next_booking,omitempty"`
	Comments    []*CommentResponse `json:"comments"`
}

// ItemResponseFromEntity maps an item without annotations
func ItemResponseFromEntity(i *Item) *ItemResponse {
	resp := &ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		Comments:    []*CommentResponse{},
	}
	if i.RequestID.Valid {
		id := i.RequestID.Int64
		resp.RequestID = &id
	}
	return resp
}

// CommentResponseFromEntity maps a comment
func CommentResponseFromEntity(c *Comment) *CommentResponse {
	return &CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.Created.UTC(),
	}
}

// SummaryFromEntity maps an item to the form listed under item requests
func SummaryFromEntity(i *Item) *itemrequest.ItemSummary {
	return &itemrequest.ItemSummary{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID.Int64,
	}
}
