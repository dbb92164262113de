package pagination

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	// DefaultBookingSize is the page size for booking lists.
	DefaultBookingSize = 10
	// DefaultSize is the page size for item and request lists.
	DefaultSize = 100

	Message = "Page parameters must be non-negative"
)

var ErrInvalidPage = errors.New("invalid page parameters")

// Page is a from/size window. From is an element offset that is aligned
// down to a page boundary, so from=5&size=10 returns the first page.
type Page struct {
	From int
	Size int
}

// New validates from and size.
func New(from, size int) (Page, error) {
	if from < 0 || size <= 0 {
		return Page{}, ErrInvalidPage
	}
	return Page{From: from, Size: size}, nil
}

// Parse reads "from" and "size" from the query, applying defaults for missing values.
func Parse(q url.Values, defaultSize int) (Page, error) {
	from, err := intParam(q, "from", 0)
	if err != nil {
		return Page{}, err
	}
	size, err := intParam(q, "size", defaultSize)
	if err != nil {
		return Page{}, err
	}
	return New(from, size)
}

// Number returns the zero-based page index.
func (p Page) Number() int {
	return p.From / p.Size
}

// Offset returns the SQL offset of the page.
func (p Page) Offset() int {
	return p.Number() * p.Size
}

// Limit returns the SQL limit of the page.
func (p Page) Limit() int {
	return p.Size
}

// Query encodes the page back into query parameters.
func (p Page) Query(q url.Values) {
	q.Set("from", strconv.Itoa(p.From))
	q.Set("size", strconv.Itoa(p.Size))
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidPage
	}
	return v, nil
}
