package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrItemNotFound    = errors.New("item not found")

	// ErrOwnItem is reported as not found so owners cannot probe booking rules
	ErrOwnItem = errors.New("owner cannot book own item")

	ErrItemUnavailable  = errors.New("item is not available")
	ErrStartInPast      = errors.New("start must not be in the past")
	ErrInvalidDateRange = errors.New("start must be before end")
	ErrNotWaiting       = errors.New("booking status has already been decided")
	ErrUnknownState     = errors.New("unknown state")
)
