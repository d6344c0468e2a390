// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so scripts can decide
// whether to retry without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation means the caller provided invalid input:
	// an unknown command or flag, or a bad flag value.
	CategoryValidation ErrorCategory = "validation"

	// CategoryForbidden means the caller lacks permission, typically
	// on the bridge socket.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient means a temporary failure: the server is not
	// running yet, or a call timed out. Retrying may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal means an unexpected failure such as a protocol
	// violation by the server.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error with an optional hint for
// the user. It wraps the underlying error so errors.Is and errors.As
// see through it.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is printed after the error on its own paragraph.
	Hint string
}

// Error returns the message, followed by the hint if there is one.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns e for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
