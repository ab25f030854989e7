package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies application errors so callers can decide how to
// react without string matching.
type ErrorType string

const (
	ErrTypeDataFormat       ErrorType = "DATA_FORMAT"
	ErrTypeNoRows           ErrorType = "NO_ROWS"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// ErrNoRows is the sentinel wrapped by no-rows errors. A filter that
// matches nothing is an expected condition, not a failure; callers
// test for it with errors.Is and usually continue with empty output.
var ErrNoRows = stderrors.New("no rows matched filter")

// AppError is the application error carrying a type, a human-readable
// message, the underlying cause and optional context values.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDataFormatError reports a source file whose columns or layout do
// not match the expected dataset shape.
func NewDataFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataFormat, message, cause)
}

// NewNoRowsError reports a filter that matched no rows. The result
// wraps ErrNoRows so callers can treat it as an empty, non-fatal
// outcome.
func NewNoRowsError(message string) *AppError {
	return NewAppError(ErrTypeNoRows, message, ErrNoRows)
}

// NewInsufficientDataError reports a series too short for the
// requested computation.
func NewInsufficientDataError(message string) *AppError {
	return NewAppError(ErrTypeInsufficientData, message, nil)
}

// NewValidationError reports an invalid argument or request.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError reports a configuration problem.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsNoRows reports whether err represents an empty filter result.
func IsNoRows(err error) bool {
	return stderrors.Is(err, ErrNoRows)
}

// TypeOf returns the ErrorType of err when it is (or wraps) an
// AppError, and an empty string otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
