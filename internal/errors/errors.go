package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard client
var (
	// Request pipeline errors
	ErrTransport    = errors.New("transport failure")
	ErrUnauthorized = errors.New("not authenticated")
	ErrBackend      = errors.New("backend error")

	// Credential store errors
	ErrNoCredential      = errors.New("no stored credential")
	ErrCorruptCredential = errors.New("stored credential is unreadable")

	// Session errors
	ErrNoSession = errors.New("no authenticated session")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnsupported    = errors.New("unsupported operation")
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

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join is errors.Join re-exported so callers only import this package.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
