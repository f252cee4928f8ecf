package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Invalidf wraps a formatted cause into ErrInvalidInput.
func Invalidf(format string, args ...any) *Error {
	return WrapError(ErrInvalidInput, fmt.Errorf(format, args...))
}

// Predefined errors
var (
	// Series errors
	ErrInvalidInput        = &Error{Code: "INVALID_INPUT", Message: "invalid input series"}
	ErrInsufficientHistory = &Error{Code: "INSUFFICIENT_HISTORY", Message: "insufficient history for indicator"}

	// Analysis errors
	ErrAnalysisFailed   = &Error{Code: "ANALYSIS_FAILED", Message: "analysis failed"}
	ErrUnknownIndicator = &Error{Code: "UNKNOWN_INDICATOR", Message: "unknown indicator"}

	// Storage errors
	ErrNotFound      = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "report archive failed"}

	// API errors
	ErrUnauthorized    = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
	ErrPayloadTooLarge = &Error{Code: "PAYLOAD_TOO_LARGE", Message: "request body too large"}
	ErrEncodingFailed  = &Error{Code: "ENCODING_FAILED", Message: "response could not be encoded"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
