// Package airlockerr defines the structured error taxonomy every tool
// invocation and internal subsystem surfaces through the dispatch
// envelope (see the error handling design in SPEC_FULL.md §7).
package airlockerr

import (
	"errors"
	"fmt"
)

// Code identifies the category of a structured error.
type Code string

const (
	InvalidInput         Code = "INVALID_INPUT"
	PolicyViolation      Code = "POLICY_VIOLATION"
	SessionNotFound      Code = "SESSION_NOT_FOUND"
	WindowNotFound       Code = "WINDOW_NOT_FOUND"
	RefNotFound          Code = "REF_NOT_FOUND"
	RefStale             Code = "REF_STALE"
	LaunchFailed         Code = "LAUNCH_FAILED"
	ConfirmationRequired Code = "CONFIRMATION_REQUIRED"
	InternalError        Code = "INTERNAL_ERROR"
)

// retriableDefaults mirrors the retriable column of the SPEC_FULL.md §7 table.
var retriableDefaults = map[Code]bool{
	InvalidInput:         false,
	PolicyViolation:      false,
	SessionNotFound:      false,
	WindowNotFound:       false,
	RefNotFound:          false,
	RefStale:             false,
	LaunchFailed:         true,
	ConfirmationRequired: false,
	InternalError:        true,
}

// Error is the structured error type propagated verbatim to the tool
// invocation's error envelope.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Retriable bool
	Details   map[string]any
}

// New creates a structured error with the default retriable policy for code.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retriable: retriableDefaults[code],
	}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code/message context to an existing error.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     err,
		Retriable: retriableDefaults[code],
	}
}

// WithDetail attaches a structured detail key/value and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithRetriable overrides the default retriable policy for this instance.
func (e *Error) WithRetriable(retriable bool) *Error {
	e.Retriable = retriable
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap enables errors.Is/As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// As extracts a structured error from err, if present.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of err, or InternalError if err is not structured.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return InternalError
}

// IsRetriable reports whether err should be retried by the caller.
func IsRetriable(err error) bool {
	if e, ok := As(err); ok {
		return e.Retriable
	}
	return false
}

// Internal wraps an unexpected error from a tool handler per dispatch step 5.
func Internal(cause error) *Error {
	return Wrap(cause, InternalError, "unexpected internal error").WithRetriable(true)
}
