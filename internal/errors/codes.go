// Package errors defines the structured error type shared by the extraction
// service, the HTTP API and the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type for extraction operations.
type ErrorCode string

const (
	// ErrCodeSourceRead indicates the character source failed mid-scan.
	ErrCodeSourceRead ErrorCode = "SOURCE_READ_FAILED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidTimezone indicates an unknown IANA timezone.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeStorage indicates a persistence failure.
	ErrCodeStorage ErrorCode = "STORAGE_FAILED"
	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal is the fallback code.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a structured error carrying a code and optional context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the code to an HTTP status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidArgument, ErrCodeInvalidTimezone:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeSourceRead:
		return http.StatusUnprocessableEntity
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeContextCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// SourceReadFailed creates a source read error.
func SourceReadFailed(cause error) *Error {
	return &Error{Code: ErrCodeSourceRead, Message: "unable to read input", Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidTimezone creates an invalid timezone error.
func InvalidTimezone(tz string, cause error) *Error {
	return &Error{Code: ErrCodeInvalidTimezone, Message: fmt.Sprintf("invalid timezone %q", tz), Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *Error {
	return &Error{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// StorageFailed creates a storage error.
func StorageFailed(msg string, cause error) *Error {
	return &Error{Code: ErrCodeStorage, Message: msg, Cause: cause}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *Error {
	return &Error{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(cause error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: "operation timed out", Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if err, or any error it wraps, carries code.
func IsCode(err error, code ErrorCode) bool {
	return GetCodeFromError(err, "") == code
}

// GetCodeFromError extracts the error code from any error in the chain.
// Returns defaultCode if none is found.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return defaultCode
}

// HTTPStatusFromError maps any error to an HTTP status.
func HTTPStatusFromError(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
