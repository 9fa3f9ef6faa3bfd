package domain

import "errors"

// Sentinel errors shared across services, repositories and handlers.
var (
	ErrNotFound         = errors.New("not found")
	ErrAuthMissing      = errors.New("not authorized, no token")
	ErrAuthInvalid      = errors.New("not authorized, token failed")
	ErrPermissionDenied = errors.New("guests cannot create or modify events")
)

// ValidationError reports malformed or missing client input. Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// Validation errors returned by the event service. Compare with errors.Is.
var (
	ErrRequiredFields  = NewValidationError("required fields missing")
	ErrInvalidCategory = NewValidationError("invalid category")
	ErrInvalidID       = NewValidationError("invalid id format")
	ErrIDRequired      = NewValidationError("id required")
	ErrNameRequired    = NewValidationError("name required")
	ErrInvalidDate     = NewValidationError("invalid date")
)

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
