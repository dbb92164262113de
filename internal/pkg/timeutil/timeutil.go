package timeutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// LocalLayout is accepted for timestamps sent without a zone; they are read as UTC.
const LocalLayout = "2006-01-02T15:04:05"

var ErrInvalidTime = errors.New("invalid time format")

// Parse accepts RFC 3339 or LocalLayout and returns the time in UTC.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(LocalLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidTime
}

// Normalize drops sub-second precision and the zone so stored values compare consistently.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Time is a request timestamp. Null or absent values leave it zero.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidTime
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
