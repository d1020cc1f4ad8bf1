package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeExternal,
				Message: "lookup failed",
				Err:     errors.New("db timeout"),
			},
			wantMsg: "external: lookup failed (db timeout)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "wrapped sentinel",
			err:    WrapError(ErrLookupFailed, errors.New("timeout")),
			target: ErrLookupFailed,
			want:   true,
		},
		{
			name:   "same type, different sentinel",
			err:    WrapError(ErrLookupFailed, errors.New("timeout")),
			target: ErrExtractionFailed,
			want:   false,
		},
		{
			name:   "type-only target",
			err:    ErrDatabaseError,
			target: &DomainError{Type: ErrorTypeInternal},
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrFileNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    ErrFileNotFound,
			target: errors.New("regular error"),
			want:   false,
		},
		{
			name:   "through fmt wrapping",
			err:    fmt.Errorf("process f-1: %w", WrapError(ErrPersonRejected, nil)),
			target: ErrPersonRejected,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrFileNotFound, ErrorTypeNotFound},
		{"validation", ErrUnknownContractSource, ErrorTypeValidation},
		{"conflict", WrapError(ErrIdentityLocked, context.Canceled), ErrorTypeConflict},
		{"internal", WrapError(ErrDatabaseError, errors.New("boom")), ErrorTypeInternal},
		{"external", fmt.Errorf("notify: %w", WrapError(ErrNotifyFailed, nil)), ErrorTypeExternal},
		{"rejected", ErrPersonRejected, ErrorTypeRejected},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestIsRejectedError(t *testing.T) {
	assert.True(t, IsRejectedError(ErrPersonRejected))
	assert.True(t, IsRejectedError(fmt.Errorf("tx: %w", WrapError(ErrPersonRejected, nil))))
	assert.False(t, IsRejectedError(ErrDatabaseError))
	assert.False(t, IsRejectedError(errors.New("plain")))
	assert.False(t, IsRejectedError(nil))
}

func TestWrapError(t *testing.T) {
	base := errors.New("driver: bad connection")
	err := WrapError(ErrDatabaseError, base)

	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "internal: database error (driver: bad connection)", err.Error())
}
