package itemrequest

import "time"

// ItemRequest is a user's announcement of an item they want (matches requests table)
type ItemRequest struct {
	ID          int64     `db:"id"`
	Description string    `db:"description"`
	RequestorID int64     `db:"requestor_id"`
	Created     time.Time `db:"created"`
}
