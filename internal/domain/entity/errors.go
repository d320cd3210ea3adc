package entity

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the wallet provider answers HTTP 429. It
// carries its own user-facing message, distinct from generic request failures.
var ErrRateLimited = errors.New("wallet provider rate limit reached, please try again in a moment")

// ValidationError is an input problem detected before any network call:
// empty or malformed address, or a missing API key.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RequestError is a failed call to one of the external providers. Message is
// taken from the provider's error payload when present, otherwise from the
// transport error.
type RequestError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
