// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, bars, signals, labels
//   - Data/Resource errors (200-299): Missing columns, unsorted or empty series, query failures
//   - Indicator errors (300-399): Technical indicator calculation and lookup errors
//   - Detector errors (400-499): Signal detector registration and configuration errors
//   - Labeling errors (500-599): Label table construction and negative sampling errors
//   - Backtest errors (600-699): Trade simulation and aggregation errors
//   - Artifact errors (700-799): Result artifact read/write errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no bars for instrument %s", instrument)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError represents an error when a rolling computation has not
// yet seen enough bars (e.g., indicator warm-up at the start of a series).
// Detectors treat it as expected warm-up behavior rather than a failure.
type InsufficientDataError struct {
	Required   int    // Minimum bars required
	Actual     int    // Actual bars available
	Instrument string // Optional: instrument context
	Message    string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, instrument, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required:   required,
		Actual:     actual,
		Instrument: instrument,
		Message:    message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, instrument, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required:   required,
		Actual:     actual,
		Instrument: instrument,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
