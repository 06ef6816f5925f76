// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/bureau-foundation/binn/lib/binn"
)

// ErrorCategory classifies command errors so that scripts can tell bad
// input from a missing file from a bug by exit status alone.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// unknown flags, wrong argument count, unparseable values, or data
	// that is not a well-formed stream. The caller should fix the input.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced file or key does not
	// exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the caller lacks the key or permission
	// for the operation: a sealed payload no identity opens, an
	// unreadable file.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the operation would clobber existing
	// state, such as an output file that already exists.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures on the output side. The caller should report the error
	// rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps each category to the process exit status. Category
// codes start at 2 so that 1 stays available for "ran fine, answer is
// no" outcomes reported through [ExitError].
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryForbidden:  4,
	CategoryConflict:   5,
	CategoryInternal:   70,
}

// ToolError is a categorized error returned by CLI commands.
//
// ToolError wraps an inner error, preserving the full error chain for
// debugging while adding category metadata. Use the category-specific
// constructors (Validation, NotFound, etc.) rather than constructing
// ToolError directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category is not
// included in the string; it surfaces as the exit status.
func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error: the caller lacks permission.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err. A ToolError anywhere in the
// chain wins. Otherwise decoding errors from lib/binn count as
// validation failures and missing files as not found; everything else
// is internal.
func CategoryOf(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	var codecError *binn.Error
	switch {
	case errors.As(err, &codecError) && codecError.Code != binn.CodeIO:
		return CategoryValidation
	case errors.Is(err, fs.ErrNotExist):
		return CategoryNotFound
	case errors.Is(err, fs.ErrPermission):
		return CategoryForbidden
	}
	return CategoryInternal
}

// ExitCodeOf returns the process exit status for err: 0 for nil, the
// code carried by an [ExitError], or the code of the error's category.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code
	}
	return exitCodes[CategoryOf(err)]
}
