package item

import "errors"

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrNotItemOwner    = errors.New("only the owner can change an item")
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("item request not found")

	// ErrCommentNotAllowed is returned when the author has no finished approved booking of the item
	ErrCommentNotAllowed = errors.New("user has not completed a booking of this item")
)
