package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for any 401. The session has already been cleared by then.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrTransport covers calls that produced no usable response: DNS, refused, timeout.
	ErrTransport = errors.New("transport failure")
	// ErrNoUser is returned when a profile endpoint answers without a user.
	ErrNoUser = errors.New("response carried no user")
)

// Error is an unexpected HTTP status from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
}
