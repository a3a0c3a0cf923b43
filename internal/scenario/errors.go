package scenario

import (
	"errors"
	"fmt"
)

// ErrInvalidKey marks malformed scenario input: a caller error, surfaced
// immediately and never retried.
var ErrInvalidKey = errors.New("invalid scenario key")

// ErrDataUnavailable marks a data-store failure (connection loss, timeout).
// The engine never retries internally; callers may retry with backoff.
var ErrDataUnavailable = errors.New("impact data store unavailable")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidKey, fmt.Sprintf(format, args...))
}

// Unavailable wraps a store-level failure so callers can detect it with
// errors.Is(err, ErrDataUnavailable).
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDataUnavailable, op, err)
}
