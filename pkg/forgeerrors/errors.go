// Package forgeerrors provides structured error handling for pbxforge with
// rich context, stack traces, and error categorization. It enables consistent
// error handling patterns across the entire codebase.
//
// # Overview
//
// The forgeerrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//
// # Basic Usage
//
//	// Create a new error
//	err := forgeerrors.New(forgeerrors.ErrorTypeInvalidVersion, "invalid version format")
//
//	// Add context
//	err = err.WithDetail("version", "abc")
//
//	// Wrap existing errors
//	if err := store.LoadBase(); err != nil {
//	    return forgeerrors.Wrap(err, forgeerrors.ErrorTypeFile, "base layer load failed").
//	        WithDetail("path", path)
//	}
//
// # Error Types
//
// Errors are categorized by type, which drives handling strategies:
//   - ErrorTypeInvalidVersion: version string does not match the accepted grammar
//   - ErrorTypeConflict: module selection produced overlapping enable/disable sets
//   - ErrorTypeValidation: resolved configuration failed schema validation
//   - ErrorTypeConfig: malformed layer or registry data
//   - ErrorTypeFile: file operation failures
//   - ErrorTypeInternal: everything else
//
// Version and conflict errors are fatal to the resolution call that raised
// them; batch resolution records them per item and continues.
package forgeerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error, used for error handling
// strategies and reporting.
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeInvalidVersion represents version grammar errors
	ErrorTypeInvalidVersion ErrorType = "invalid_version"
	// ErrorTypeConflict represents catalog-data conflicts (enable/disable overlap)
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents schema validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration/layer data errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeNotFound represents resource not found errors
	ErrorTypeNotFound ErrorType = "not_found"
)

// Error represents a structured error with context, providing rich debugging
// information and enabling sophisticated error handling strategies.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack, capturing
// the function name, file path, and line number for debugging.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface, returning a formatted error message
// that includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error, providing additional
// context for debugging and reporting. This method can be chained.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, automatically
// capturing the call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type, useful for error handling
// strategies and conditional logic based on error categories.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
