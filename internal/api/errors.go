package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed backend call.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s failed: HTTP status %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s failed: HTTP status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsUnauthorized reports whether err is a 401 response from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
