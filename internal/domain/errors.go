package domain

import (
	"errors"
	"fmt"
)

// Error codes shared by every layer of the service.
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeUpstream   = "UPSTREAM_ERROR"
	ErrCodeLocation   = "LOCATION_UNAVAILABLE"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// DomainError is a typed error carrying a stable code for API responses.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports that the named entity with the given id does not exist.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s with id %q not found", entity, id),
	}
}

// NewValidationError reports invalid caller input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: message}
}

// NewConflictError reports a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: ErrCodeConflict, Message: message}
}

// NewUpstreamError wraps a failure talking to a remote API or file host.
func NewUpstreamError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodeUpstream, Message: message, Err: err}
}

// NewLocationError wraps a geolocation failure.
func NewLocationError(err error) *DomainError {
	return &DomainError{Code: ErrCodeLocation, Message: "current location unavailable", Err: err}
}

// CodeOf returns the code of the first DomainError in err's chain, or ErrCodeInternal.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// IsNotFound reports whether err is a not-found DomainError.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}
