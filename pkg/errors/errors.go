package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeValidation indicates malformed or unparseable input.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeConflict indicates a uniqueness or constraint violation.
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeUnavailable indicates an external collaborator was unreachable.
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	// ErrorTypeInternal indicates an unexpected internal error.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is the application error carrying a type, message and cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error.
func New(errorType ErrorType, message string) error {
	return &AppError{Type: errorType, Message: message}
}

// Wrap wraps a cause with an application error.
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{Type: errorType, Message: message, Err: err}
}

// NotFound creates a not found error.
func NotFound(message string) error {
	return New(ErrorTypeNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) error {
	return New(ErrorTypeValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) error {
	return New(ErrorTypeConflict, message)
}

// Unavailable creates an unavailable error.
func Unavailable(message string) error {
	return New(ErrorTypeUnavailable, message)
}

// Internal creates an internal error.
func Internal(message string) error {
	return New(ErrorTypeInternal, message)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsNotFound checks whether err is a not found error.
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidation checks whether err is a validation error.
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsConflict checks whether err is a conflict error.
func IsConflict(err error) bool { return isType(err, ErrorTypeConflict) }

// IsUnavailable checks whether err is an unavailable error.
func IsUnavailable(err error) bool { return isType(err, ErrorTypeUnavailable) }

// IsInternal checks whether err is an internal error.
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }

// IsDuplicateKey reports whether err looks like a duplicate key violation
// from the underlying database driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "duplicate entry")
}
