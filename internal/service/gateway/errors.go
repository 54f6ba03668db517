package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Typed failures shared by the directory and request gateway clients.
// Callers translate these into user-facing text; the clients never retry.
var (
	ErrUnavailable = errors.New("gateway unavailable")
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
)

// FromStatusCode maps a non-2xx HTTP status to the matching typed error.
func FromStatusCode(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: status %d", ErrBadRequest, code)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
}
