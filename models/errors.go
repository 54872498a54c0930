package models

import "fmt"

type ErrorKind string

const (
	ErrValidation    ErrorKind = "validation"
	ErrConfiguration ErrorKind = "configuration"
	ErrTransport     ErrorKind = "transport"
	ErrTimeout       ErrorKind = "timeout"
)

// RelayError tags a failure with the taxonomy used by the HTTP boundary
// to pick a status code and retry behavior.
type RelayError struct {
	Kind ErrorKind
	// Field names the offending form field for validation errors.
	Field string
	Err   error
}

func (e *RelayError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }

func NewValidationError(field string, err error) *RelayError {
	return &RelayError{Kind: ErrValidation, Field: field, Err: err}
}

func NewConfigurationError(err error) *RelayError {
	return &RelayError{Kind: ErrConfiguration, Err: err}
}

func NewTransportError(err error) *RelayError {
	return &RelayError{Kind: ErrTransport, Err: err}
}

func NewTimeoutError(err error) *RelayError {
	return &RelayError{Kind: ErrTimeout, Err: err}
}
