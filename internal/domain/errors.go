package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced entity id does not exist,
	// scoped to the parent for nested lookups. Handlers map it to 404.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes malformed or missing required input. Handlers
// map it to 400 with the message in the response body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
