package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"  // bad or missing configuration
	ErrExec    = "EXEC"    // general command execution failure
	ErrTimeout = "TIMEOUT" // probe command exceeded its time budget
	ErrLaunch  = "LAUNCH"  // probe binary missing or not executable
	ErrParse   = "PARSE"   // probe output had no recognizable metrics
	ErrStore   = "STORE"   // result store unreadable or unwritable
	ErrLock    = "LOCK"    // run lock could not be acquired
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrExec code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with formatted output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var hbErr *Error
	if errors.As(err, &hbErr) {
		return hbErr.Code == code
	}
	return false
}

// IsProbeFailure reports whether an error is one of the per-probe failure
// modes (timeout, launch, parse). The suite absorbs these rather than
// propagating them: the affected metric group is omitted from the result.
func IsProbeFailure(err error) bool {
	return IsCode(err, ErrTimeout) || IsCode(err, ErrLaunch) || IsCode(err, ErrParse)
}

// ExitError carries a process exit code through the CLI error path
// without printing any message.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
