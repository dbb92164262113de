package notification

import (
	"fmt"
	"time"

	"github.com/shareit/shareit-api/internal/pkg/events"
)

// Sender delivers a payload to every connection of a user
type Sender interface {
	SendToUser(userID int64, payload any) error
}

// Message is what a connected client receives
type Message struct {
	Type      string                     `json:"type"`
	Booking   events.BookingEventPayload `json:"booking"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Service turns booking events into user notifications.
// New bookings go to the item owner, decisions go to the booker.
type Service struct {
	sender Sender
}

// NewService creates notification service
func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// Subscribe attaches the service to the booking events of bus.
func (s *Service) Subscribe(bus *events.Bus) {
	bus.Subscribe(s.Handle, events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected)
}

// Handle routes a single event to its recipient.
func (s *Service) Handle(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}

	recipient := payload.BookerID
	if event.Type == events.EventBookingCreated {
		recipient = payload.OwnerID
	}

	return s.sender.SendToUser(recipient, Message{
		Type:      event.Type,
		Booking:   payload,
		CreatedAt: event.CreatedAt,
	})
}
