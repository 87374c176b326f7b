package errors

import (
	"errors"
	"fmt"

	"sustainers/internal/dataprocessing"
	"sustainers/internal/validation"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// ProcessingMessage prefixes every failure of a donor export run
const ProcessingMessage = "Error processing CSV"

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
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
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

// NewProcessingError wraps a pipeline failure as "Error processing CSV: <cause>"
// and classifies it by cause
func NewProcessingError(cause error) *AppError {
	return NewAppError(ClassifyError(cause), ProcessingMessage, cause)
}

// ClassifyError picks the ErrorType matching a pipeline failure
func ClassifyError(err error) ErrorType {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Type
	case errors.Is(err, validation.ErrFileNotFound):
		return ErrTypeNotFound
	case errors.Is(err, dataprocessing.ErrMissingColumn),
		errors.Is(err, validation.ErrUnparseableMonth):
		return ErrTypeValidation
	default:
		return ErrTypeParsing
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
