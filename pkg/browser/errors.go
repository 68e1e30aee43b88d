package browser

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession        = errors.New("no active browser session")
	ErrAlreadyRunning   = errors.New("browser session already running")
	ErrSessionClosed    = errors.New("browser session closed")
	ErrElementNotFound  = errors.New("element not found")
	ErrOperationTimeout = errors.New("operation timeout")
)

// DriverError wraps errors from the underlying browser driver with a
// stable code for API mapping.
type DriverError struct {
	Code    string
	Message string
	Err     error
}

func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("driver error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("driver error [%s]: %s", e.Code, e.Message)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// NewDriverError creates a new DriverError.
func NewDriverError(code, message string) *DriverError {
	return &DriverError{Code: code, Message: message}
}

// WrapDriverError wraps an existing error with driver context.
func WrapDriverError(code, message string, err error) *DriverError {
	return &DriverError{Code: code, Message: message, Err: err}
}

// IsNotFound returns true if the error indicates a missing element.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrElementNotFound) {
		return true
	}
	var driverErr *DriverError
	if errors.As(err, &driverErr) {
		return driverErr.Code == "not_found"
	}
	return false
}

// IsSessionError returns true if the error indicates the session is
// gone rather than the operation having failed.
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionClosed)
}
