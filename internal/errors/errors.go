package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates packwerk.yml could not be read or is malformed
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ManifestInvalid indicates a package.yml or package_todo.yml field is malformed
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// PackNotFound indicates a pack name that is not in the registry
	PackNotFound ErrorCode = "PACK_NOT_FOUND"
	// ExtractionFailed indicates a source file could not be read or parsed
	ExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// CacheFailure indicates the content cache could not be read or written
	CacheFailure ErrorCode = "CACHE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// PksError represents a pks error with code, message and the underlying cause
type PksError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error     // Underlying error (not exported to JSON)
}

// New creates a new PksError
func New(code ErrorCode, message string, cause error) *PksError {
	return &PksError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new PksError without a cause, formatting the message
func Newf(code ErrorCode, format string, args ...interface{}) *PksError {
	return &PksError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *PksError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PksError) Unwrap() error {
	return e.cause
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var pe *PksError
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.cause
	}
	return false
}
