package comic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPageNumber means the page reference was not a positive integer.
	ErrInvalidPageNumber = errors.New("invalid page number")
	// ErrNotFound means the page number is outside [1, totalPages].
	ErrNotFound = errors.New("page not found")
)

// TransportError reports a failure of the mechanism used to reach the
// catalog (network, decoding, unexpected status).
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Describe turns any fetch error into a message suitable for a reader.
func Describe(err error) string {
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPageNumber):
		return "That page does not exist: the page number is not valid."
	case errors.Is(err, ErrNotFound):
		return "That page does not exist."
	case errors.As(err, &te):
		return "Could not load the page. Check your connection and try again."
	default:
		return "Something went wrong while loading the page: " + err.Error()
	}
}
