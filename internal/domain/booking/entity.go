package booking

import (
	"fmt"
	"strings"
	"time"
)

// Status represents booking lifecycle status
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusCanceled Status = "CANCELED"
)

// State is the listing filter for booker and owner views
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState parses a filter name, ignoring case. Empty means ALL.
func ParseState(raw string) (State, error) {
	if strings.TrimSpace(raw) == "" {
		return StateAll, nil
	}
	switch s := State(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownState, raw)
}

// Booking is a reservation of an item (matches bookings table).
// ItemName, OwnerID and BookerName are joined from items and users.
type Booking struct {
	ID       int64     `db:"id"`
	Start    time.Time `db:"start_date"`
	End      time.Time `db:"end_date"`
	ItemID   int64     `db:"item_id"`
	BookerID int64     `db:"booker_id"`
	Status   Status    `db:"status"`

	ItemName   string `db:"item_name"`
	OwnerID    int64  `db:"owner_id"`
	BookerName string `db:"booker_name"`
}

// VisibleTo reports whether userID is the booker or the item owner
func (b *Booking) VisibleTo(userID int64) bool {
	return b.BookerID == userID || b.OwnerID == userID
}
