package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
)

// Repository defines booking data access interface
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// UpdateStatus moves a booking from one status to another and reports
	// whether the row was still in the from status.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error)
	ListByBooker(ctx context.Context, bookerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error)

	LastAndNext(ctx context.Context, itemIDs []int64, now time.Time) (last, next map[int64]*item.BookingShort, err error)
	HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectDetails = `SELECT b.id, b.start_date, b.end_date, b.item_id, b.booker_id, b.status,
		i.name AS item_name, i.owner_id, u.name AS booker_name
	FROM bookings b
	JOIN items i ON i.id = b.item_id
	JOIN users u ON u.id = b.booker_id`

func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := r.db.Rebind(`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	err := r.db.GetContext(ctx, &b.ID, query, b.Start, b.End, b.ItemID, b.BookerID, b.Status)
	if err != nil {
		return fmt.Errorf("booking repository create: %w", database.MapError(err))
	}
	return nil
}

// GetByID returns the booking with item and booker details, or nil when it does not exist
func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	if err := r.db.GetContext(ctx, &b, r.db.Rebind(selectDetails+` WHERE b.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("booking repository get: %w", err)
	}
	return &b, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`), to, id, from)
	if err != nil {
		return false, fmt.Errorf("booking repository update status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("booking repository update status: %w", err)
	}
	return rows > 0, nil
}

func (r *repository) ListByBooker(ctx context.Context, bookerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error) {
	return r.list(ctx, "b.booker_id = ?", bookerID, state, now, page)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error) {
	return r.list(ctx, "i.owner_id = ?", ownerID, state, now, page)
}

func (r *repository) list(ctx context.Context, who string, userID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error) {
	cond, args := stateFilter(state, now)

	query := selectDetails + ` WHERE ` + who + cond + ` ORDER BY b.start_date DESC, b.id DESC`
	args = append([]interface{}{userID}, args...)
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Limit(), page.Offset())
	}

	bookings := []*Booking{}
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("booking repository list %s: %w", state, err)
	}
	return bookings, nil
}

// stateFilter returns the extra WHERE clause for a listing state
func stateFilter(state State, now time.Time) (string, []interface{}) {
	switch state {
	case StateCurrent:
		return ` AND b.start_date <= ? AND b.end_date >= ?`, []interface{}{now, now}
	case StatePast:
		return ` AND b.end_date < ?`, []interface{}{now}
	case StateFuture:
		return ` AND b.start_date > ?`, []interface{}{now}
	case StateWaiting:
		return ` AND b.status = ? AND b.start_date > ?`, []interface{}{StatusWaiting, now}
	case StateRejected:
		return ` AND b.status = ?`, []interface{}{StatusRejected}
	default:
		return "", nil
	}
}

type approvedRow struct {
	ID       int64     `db:"id"`
	ItemID   int64     `db:"item_id"`
	BookerID int64     `db:"booker_id"`
	Start    time.Time `db:"start_date"`
}

func (r *repository) LastAndNext(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*item.BookingShort, map[int64]*item.BookingShort, error) {
	last := map[int64]*item.BookingShort{}
	next := map[int64]*item.BookingShort{}
	if len(itemIDs) == 0 {
		return last, next, nil
	}

	query, args, err := sqlx.In(`SELECT id, item_id, booker_id, start_date FROM bookings
		WHERE item_id IN (?) AND status = ?
		ORDER BY start_date, id`, itemIDs, StatusApproved)
	if err != nil {
		return nil, nil, fmt.Errorf("booking repository last and next: %w", err)
	}

	var rows []approvedRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, nil, fmt.Errorf("booking repository last and next: %w", err)
	}

	// Rows are ascending by start: the last one at or before now wins "last",
	// the first one after now wins "next".
	for _, row := range rows {
		short := &item.BookingShort{ID: row.ID, BookerID: row.BookerID}
		if !row.Start.After(now) {
			last[row.ItemID] = short
		} else if _, ok := next[row.ItemID]; !ok {
			next[row.ItemID] = short
		}
	}
	return last, next, nil
}

func (r *repository) HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE booker_id = ? AND item_id = ? AND status = ? AND end_date < ?)`)

	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, userID, itemID, StatusApproved, now); err != nil {
		return false, fmt.Errorf("booking repository finished booking: %w", err)
	}
	return ok, nil
}
