package services

import (
	"errors"
	"fmt"
	"net/http"

	"devconnector/internal/validation"
)

// Error types carried on the wire
const (
	ErrTypeValidation   = "VALIDATION_ERROR"
	ErrTypeNotFound     = "NOT_FOUND"
	ErrTypeConflict     = "CONFLICT"
	ErrTypeUnauthorized = "UNAUTHORIZED"
	ErrTypeRateLimited  = "RATE_LIMITED"
	ErrTypeInternal     = "INTERNAL_ERROR"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                  `json:"type"`
	Message    string                  `json:"message"`
	Fields     []validation.FieldError `json:"fields,omitempty"`
	StatusCode int                     `json:"-"`
	Cause      error                   `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// WithField attaches a field message, keeping one message per field
func (e *ServiceError) WithField(field, message string) *ServiceError {
	e.Fields = validation.Errors(e.Fields).Add(field, message, "")
	return e
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error. validation.Errors causes
// are expanded into per-field messages.
func NewValidationError(message string, cause error) *ServiceError {
	se := &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}

	var fieldErrs validation.Errors
	if errors.As(cause, &fieldErrs) {
		se.Fields = []validation.FieldError(fieldErrs)
	}
	return se
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *ServiceError {
	return NewValidationError(message, nil).WithField(field, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error. Conflicts are client errors (400).
func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeConflict,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInternalError creates an internal server error. The cause is logged, never sent.
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return NewValidationError("Validation failed", err)
	}

	return NewInternalError("Internal server error", err)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if se := GetServiceError(err); se != nil {
		return se.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrTypeValidation)
}
