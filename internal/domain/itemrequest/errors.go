package itemrequest

import "errors"

var (
	ErrRequestNotFound = errors.New("item request not found")
	ErrUserNotFound    = errors.New("user not found")
)
