// Package errors provides structured error types for moltda.
//
// Every failure the vectorization core can report carries a machine-readable
// [Code], so the CLI, the HTTP API and library callers can branch on the kind
// of failure without matching message strings.
//
// # Error Codes
//
// Codes describing the vectorization contract:
//   - INVALID_WEIGHT_SPEC: per-point weights do not match the point count
//   - UNSUPPORTED_WEIGHTING: unknown weighting policy key
//   - UNSUPPORTED_KERNEL: unknown smoothing kernel key
//   - UNDEFINED_BOUNDS: bounds estimation requested but every landscape is empty
//   - UNSUPPORTED_FILE_TYPE: the loader does not know the file extension
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedWeighting, "weighting %q not implemented", name)
//	if errors.Is(err, errors.ErrCodeUnsupportedWeighting) {
//	    // Handle unknown policy
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEngineFailed, origErr, "run %s", cmd)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Vectorization contract
	ErrCodeInvalidWeightSpec    Code = "INVALID_WEIGHT_SPEC"
	ErrCodeUnsupportedWeighting Code = "UNSUPPORTED_WEIGHTING"
	ErrCodeUnsupportedKernel    Code = "UNSUPPORTED_KERNEL"
	ErrCodeUndefinedBounds      Code = "UNDEFINED_BOUNDS"
	ErrCodeUnsupportedFileType  Code = "UNSUPPORTED_FILE_TYPE"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPixels  Code = "INVALID_PIXELS"
	ErrCodeInvalidDiagram Code = "INVALID_DIAGRAM"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// External collaborators
	ErrCodeEngineFailed Code = "ENGINE_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the environment. The HTTP API maps these codes to 400 responses.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidWeightSpec,
		ErrCodeUnsupportedWeighting,
		ErrCodeUnsupportedKernel,
		ErrCodeUndefinedBounds,
		ErrCodeUnsupportedFileType,
		ErrCodeInvalidInput,
		ErrCodeInvalidPixels,
		ErrCodeInvalidDiagram,
		ErrCodeInvalidFormat:
		return true
	}
	return false
}
