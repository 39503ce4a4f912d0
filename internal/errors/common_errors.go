package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeIO         ErrorType = "IO"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSchemaError reports a column that a transform or the configuration
// references but the dataset schema does not contain.
func NewSchemaError(column string, available []string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("column %q not found in schema", column), nil).
		WithContext("column", column).
		WithContext("available", strings.Join(available, ", "))
}

// NewAppValidationError reports an out-of-range or malformed configuration value.
func NewAppValidationError(field, message string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("%s: %s", field, message), nil).
		WithContext("field", field)
}

// NewIOError wraps a failure reading or writing a file or stream.
func NewIOError(op, path string, cause error) *AppError {
	msg := op
	if path != "" {
		msg = fmt.Sprintf("%s %s", op, path)
	}
	return NewAppError(ErrTypeIO, msg, cause).WithContext("path", path)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsSchemaError reports whether err carries a SCHEMA AppError.
func IsSchemaError(err error) bool {
	return TypeOf(err) == ErrTypeSchema
}

// IsValidationError reports whether err carries a VALIDATION AppError.
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrTypeValidation
}

// IsIOError reports whether err carries an IO AppError.
func IsIOError(err error) bool {
	return TypeOf(err) == ErrTypeIO
}
