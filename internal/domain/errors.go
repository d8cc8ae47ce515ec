package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a queue session or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnavailable is returned when the extraction service cannot be reached
	// or answers with an error status.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedResponse is returned when the extraction service answers with a body
	// that cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// ItemError is a recoverable failure of a single entry inside a page.
type ItemError struct {
	URL     string
	Message string
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	if e.URL == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.URL, e.Message)
}
