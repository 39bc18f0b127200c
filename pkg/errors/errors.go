package errors

import (
	"errors"
	"fmt"
)

// Standard error kinds
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrValidation         = errors.New("validation error")
	ErrHTTPRequest        = errors.New("HTTP request error")
	ErrHTTPResponse       = errors.New("HTTP response error")
	ErrExtraction         = errors.New("data extraction error")
	ErrAuthentication     = errors.New("authentication error")
	ErrQueryCountExceeded = errors.New("query count exceeded")
)

// WrapError wraps an error with a standard error kind
func WrapError(err error, errType error, message string) error {
	wrapped := fmt.Errorf("%s: %w", message, err)
	return fmt.Errorf("%w: %w", errType, wrapped)
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As provides a convenience wrapper around errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap provides a convenience wrapper around errors.Unwrap
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
