package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeInvalid        ErrorCode = "INVALID"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal       ErrorCode = "INTERNAL"
	ErrCodeQueryFailed    ErrorCode = "QUERY_FAILED"
	ErrCodeMutationFailed ErrorCode = "MUTATION_FAILED"
)

// Error represents a domain-level error.
// StoreCode carries the backend's own code (e.g. a SQLSTATE) when the store rejected the call.
type Error struct {
	Code      ErrorCode
	Message   string
	StoreCode string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StoreError is returned by storage adapters to expose the backend error code.
type StoreError struct {
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Code)
}

func (e *StoreError) Unwrap() error { return e.Err }

// QueryFailed classifies a rejected read.
func QueryFailed(err error) *Error {
	return storeFailure(ErrCodeQueryFailed, "query failed", err)
}

// MutationFailed classifies a write rejected while online.
func MutationFailed(err error) *Error {
	return storeFailure(ErrCodeMutationFailed, "mutation failed", err)
}

func storeFailure(code ErrorCode, message string, err error) *Error {
	e := WrapError(code, message, err)
	var sErr *StoreError
	if errors.As(err, &sErr) {
		e.StoreCode = sErr.Code
	}
	return e
}

// Common domain errors.
var (
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrCategoryNotFound = NewError(ErrCodeNotFound, "category not found")
	ErrDraftNotFound    = NewError(ErrCodeNotFound, "draft not found")
	ErrFeedNotFound     = NewError(ErrCodeNotFound, "feed not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
