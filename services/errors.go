package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeRejected   ErrorType = "rejected"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when their types and
// messages match, so a wrapped sentinel still matches the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrFileNotFound = NewDomainError(ErrorTypeNotFound, "worksheet file not found", nil)

	// Validation Errors
	ErrInvalidInput          = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrUnknownContractSource = NewDomainError(ErrorTypeValidation, "unknown contract source", nil)
	ErrInvalidBirthDate      = NewDomainError(ErrorTypeValidation, "invalid birth date", nil)

	// Conflict Errors
	ErrIdentityLocked = NewDomainError(ErrorTypeConflict, "identity is being processed by another worker", nil)

	// Rejected Errors
	ErrPersonRejected = NewDomainError(ErrorTypeRejected, "person insert rejected by the store", nil)

	// Internal Errors
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)

	// External Errors
	ErrLookupFailed     = NewDomainError(ErrorTypeExternal, "lookup failed", nil)
	ErrExtractionFailed = NewDomainError(ErrorTypeExternal, "extraction failed", nil)
	ErrNotifyFailed     = NewDomainError(ErrorTypeExternal, "notification failed", nil)
)

// IsRejectedError checks if an error is a store rejection
func IsRejectedError(err error) bool {
	return GetErrorType(err) == ErrorTypeRejected
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// WrapError wraps err under a sentinel, keeping the sentinel's type and
// message so errors.Is matches it
func WrapError(sentinel *DomainError, err error) error {
	return NewDomainError(sentinel.Type, sentinel.Message, err)
}
