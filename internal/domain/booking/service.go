package booking

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/events"
	"github.com/shareit/shareit-api/internal/pkg/export"
	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

// ItemFinder loads the item being booked
type ItemFinder interface {
	GetByID(ctx context.Context, id int64) (*item.Item, error)
}

// Service handles the booking lifecycle
type Service struct {
	repo  Repository
	items ItemFinder
	users user.Repository
	bus   *events.Bus
	now   func() time.Time
}

// NewService creates booking service. bus may be nil.
func NewService(repo Repository, items ItemFinder, users user.Repository, bus *events.Bus) *Service {
	return &Service{repo: repo, items: items, users: users, bus: bus, now: time.Now}
}

// Create places a WAITING booking of an available item owned by someone else.
func (s *Service) Create(ctx context.Context, userID int64, req *CreateRequest) (*Response, error) {
	booker, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if booker == nil {
		return nil, ErrUserNotFound
	}

	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrItemNotFound
	}
	if it.IsOwner(userID) {
		return nil, ErrOwnItem
	}
	if !it.Available {
		return nil, ErrItemUnavailable
	}

	start, end := timeutil.Normalize(req.Start.Time), timeutil.Normalize(req.End.Time)
	if start.Before(timeutil.Normalize(s.now())) {
		return nil, ErrStartInPast
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	b := &Booking{
		Start:      start,
		End:        end,
		ItemID:     it.ID,
		BookerID:   userID,
		Status:     StatusWaiting,
		ItemName:   it.Name,
		OwnerID:    it.OwnerID,
		BookerName: booker.Name,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(string(StatusWaiting))
	s.publish(ctx, events.EventBookingCreated, b)
	logger.LogInfo(ctx, "Booking created", "booking_id", b.ID, "item_id", b.ItemID, "booker_id", userID)

	return ResponseFromEntity(b), nil
}

// Decide approves or rejects a WAITING booking. Only the item owner may
// decide; anyone else gets ErrBookingNotFound.
func (s *Service) Decide(ctx context.Context, userID, bookingID int64, approved bool) (*Response, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.OwnerID != userID {
		return nil, ErrBookingNotFound
	}
	if b.Status != StatusWaiting {
		return nil, ErrNotWaiting
	}

	to := StatusRejected
	if approved {
		to = StatusApproved
	}

	updated, err := s.repo.UpdateStatus(ctx, b.ID, StatusWaiting, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Decided concurrently
		return nil, ErrNotWaiting
	}
	b.Status = to

	metrics.IncBookingTransition(string(to))
	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publish(ctx, eventType, b)
	logger.LogInfo(ctx, "Booking decided", "booking_id", b.ID, "status", string(to))

	return ResponseFromEntity(b), nil
}

// Get returns a booking visible to its booker and the item owner only.
func (s *Service) Get(ctx context.Context, userID, bookingID int64) (*Response, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil || !b.VisibleTo(userID) {
		return nil, ErrBookingNotFound
	}
	return ResponseFromEntity(b), nil
}

// ListByBooker returns the caller's bookings in state, newest start first.
func (s *Service) ListByBooker(ctx context.Context, userID int64, state State, page pagination.Page) ([]*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListByBooker(ctx, userID, state, s.now().UTC(), &page)
	if err != nil {
		return nil, err
	}
	return ResponsesFromEntities(bookings), nil
}

// ListByOwner returns bookings of the caller's items in state, newest start first.
func (s *Service) ListByOwner(ctx context.Context, userID int64, state State, page pagination.Page) ([]*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListByOwner(ctx, userID, state, s.now().UTC(), &page)
	if err != nil {
		return nil, err
	}
	return ResponsesFromEntities(bookings), nil
}

// ExportOwner renders every booking of the caller's items in state as an xlsx workbook.
func (s *Service) ExportOwner(ctx context.Context, userID int64, state State) ([]byte, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	bookings, err := s.repo.ListByOwner(ctx, userID, state, now, nil)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Sheet:   "Bookings",
		Title:   fmt.Sprintf("Bookings (%s) as of %s", state, now.Format("2006-01-02 15:04 MST")),
		Headers: []string{"ID", "Item ID", "Item", "Booker ID", "Booker", "Start", "End", "Status"},
		Widths:  []float64{8, 10, 30, 10, 25, 20, 20, 12},
	}
	for _, b := range bookings {
		table.Rows = append(table.Rows, []interface{}{
			b.ID, b.ItemID, b.ItemName, b.BookerID, b.BookerName,
			b.Start.UTC().Format(timeutil.LocalLayout), b.End.UTC().Format(timeutil.LocalLayout), string(b.Status),
		})
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *Booking) {
	err := s.bus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		ItemName:  b.ItemName,
		OwnerID:   b.OwnerID,
		BookerID:  b.BookerID,
		Status:    string(b.Status),
		Start:     b.Start.UTC(),
		End:       b.End.UTC(),
	})
	if err != nil {
		logger.LogError(ctx, err, "Failed to publish booking event", "booking_id", b.ID, "event", eventType)
	}
}
