// Package errors provides enhanced error types with context and suggestion
// metadata for kernelc. These errors carry a code, a suggestion, a context
// map and a lightweight stack trace to improve user diagnostics.
package errors

import (
	stdErrors "errors"
	"runtime"
	"strings"
)

// ErrorCode categorizes errors for handling
type ErrorCode string

const (
	// Environment errors
	ErrRuntimeNotFound  ErrorCode = "RUNTIME_NOT_FOUND"
	ErrArtifactNotFound ErrorCode = "ARTIFACT_NOT_FOUND"

	// Contract errors
	ErrInvalidBuildMode ErrorCode = "INVALID_BUILD_MODE"
	ErrInvalidProject   ErrorCode = "INVALID_PROJECT"

	// Execution errors
	ErrBuildFailed        ErrorCode = "BUILD_FAILED"
	ErrProcessStartFailed ErrorCode = "PROCESS_START_FAILED"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Unknown errors
	ErrUnknown ErrorCode = "UNKNOWN"
)

// StackFrame represents a single stack frame
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error is the base error type with rich context
type Error struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      error             `json:"-"`
	Context    map[string]string `json:"context,omitempty"`
	Stack      []StackFrame      `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}
	if e.Cause != nil {
		sb.WriteString("\nCaused by: ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// WithSuggestion adds a suggestion for fixing the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithContext adds contextual information
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps another error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails adds detailed information
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	err := &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]string),
	}
	err.captureStack()
	err.Suggestion = getDefaultSuggestion(code)
	return err
}

// Wrap wraps a standard error with Error
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	var kerr *Error
	if stdErrors.As(err, &kerr) {
		if message != "" {
			kerr.Message = message + ": " + kerr.Message
		}
		return kerr
	}
	return New(code, message).WithCause(err)
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var kerr *Error
	return stdErrors.As(err, &kerr) && kerr.Code == code
}

// captureStack captures the current stack trace
func (e *Error) captureStack() {
	const maxFrames = 10
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pc) // Skip runtime.Callers, captureStack, New
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") || strings.Contains(frame.File, "testing/") {
			if !more {
				break
			}
			continue
		}
		e.Stack = append(e.Stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
}

// getDefaultSuggestion provides default fix suggestions
func getDefaultSuggestion(code ErrorCode) string {
	suggestions := map[ErrorCode]string{
		ErrRuntimeNotFound:    "Install the Dart SDK or set KERNELC_DART to the runtime binary",
		ErrArtifactNotFound:   "Check the engine artifacts: kernelc doctor",
		ErrInvalidBuildMode:   "Use one of --debug, --profile or --release",
		ErrInvalidProject:     "Fix kernelc.hcl in the project directory",
		ErrBuildFailed:        "Rerun with --verbose to see compiler output",
		ErrProcessStartFailed: "Check that the runtime binary is executable",
		ErrInvalidConfig:      "Fix or remove ~/.kernelc.json",
	}
	if s, ok := suggestions[code]; ok {
		return s
	}
	return "Run 'kernelc doctor' for diagnostics"
}
