package booking

import (
	"time"

	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

// CreateRequest for POST /bookings
type CreateRequest struct {
	ItemID int64         `json:"item_id" validate:"required,gt=0"`
	Start  timeutil.Time `json:"start"`
	End    timeutil.Time `json:"end"`
}

// Validate checks the date rules against now. Field errors are keyed by JSON name.
func (r *CreateRequest) Validate(now time.Time) map[string]string {
	errs := map[string]string{}
	if r.Start.IsZero() {
		errs["start"] = "This field is required"
	}
	if r.End.IsZero() {
		errs["end"] = "This field is required"
	}
	if len(errs) > 0 {
		return errs
	}

	if r.Start.Before(now) {
		errs["start"] = ErrStartInPast.Error()
	}
	if !r.Start.Before(r.End.Time) {
		errs["end"] = ErrInvalidDateRange.Error()
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BookerShort identifies the booker in responses
type BookerShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemShort identifies the item in responses
type ItemShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Response represents booking in API response
type Response struct {
	ID     int64       `json:"id"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Status Status      `json:"status"`
	Booker BookerShort `json:"booker"`
	Item   ItemShort   `json:"item"`
}

// ResponseFromEntity maps a booking to its API form
func ResponseFromEntity(b *Booking) *Response {
	return &Response{
		ID:     b.ID,
		Start:  b.Start.UTC(),
		End:    b.End.UTC(),
		Status: b.Status,
		Booker: BookerShort{ID: b.BookerID, Name: b.BookerName},
		Item:   ItemShort{ID: b.ItemID, Name: b.ItemName},
	}
}

// ResponsesFromEntities maps a slice of bookings
func ResponsesFromEntities(bookings []*Booking) []*Response {
	out := make([]*Response, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ResponseFromEntity(b))
	}
	return out
}
