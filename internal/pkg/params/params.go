// Package params parses path and query values shared by the HTTP handlers.
package params

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidBool = errors.New("invalid boolean")
)

// ID parses a positive integer id.
func ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// PathID parses the named chi URL parameter as an id.
func PathID(r *http.Request, name string) (int64, error) {
	return ID(chi.URLParam(r, name))
}

// Bool parses a required "true"/"false" query value.
func Bool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, ErrInvalidBool
}
