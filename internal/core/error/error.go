package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// GeocodeErrorMessage describes address validation service failures.
	GeocodeErrorMessage = "address validation service failed"
	// NotifyErrorMessage describes confirmation delivery failures.
	NotifyErrorMessage = "confirmation delivery failed"
	// TelephonyErrorMessage describes call control failures.
	TelephonyErrorMessage = "call control operation failed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// WrapGeocode wraps a geocoding transport failure. A semantic "address judged
// invalid" outcome is not an error and never goes through here.
func WrapGeocode(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, GeocodeErrorMessage)
}

// WrapNotify wraps a notification delivery failure.
func WrapNotify(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, NotifyErrorMessage)
}

// WrapTelephony wraps a call control failure.
func WrapTelephony(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, TelephonyErrorMessage)
}
