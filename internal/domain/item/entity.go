package item

import (
	"database/sql"
	"time"
)

// Item is a shareable object listed by its owner (matches items table)
type Item struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Available   bool          `db:"is_available"`
	OwnerID     int64         `db:"owner_id"`
	RequestID   sql.NullInt64 `db:"request_id"`
}

// IsOwner reports whether userID listed the item
func (i *Item) IsOwner(userID int64) bool {
	return i.OwnerID == userID
}

// Comment is a review left by a user who rented the item (matches comments table)
type Comment struct {
	ID         int64     `db:"id"`
	Text       string    `db:"text"`
	ItemID     int64     `db:"item_id"`
	AuthorID   int64     `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Created    time.Time `db:"created"`
}

// BookingShort is the minimal booking projection shown to item owners
type BookingShort struct {
	ID       int64 `db:"id" json:"id"`
	BookerID int64 `db:"booker_id" json:"booker_id"`
}
