package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal
var (
	// Session errors
	ErrNoSession       = errors.New("no session")
	ErrMalformedCookie = errors.New("malformed session cookie")

	// Flow errors
	ErrFlowNotFound = errors.New("flow not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
