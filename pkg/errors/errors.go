// Package errors provides the unified error type and factory functions for
// PaidUp.  Every layer (domain, application, infrastructure, interfaces) uses
// AppError as the single carrier for structured error information, so callers
// can branch on a typed code instead of string-matching messages.  Legal
// correctness depends on this: an ambiguous statutory basis or a missing
// field must surface as a distinct, recoverable error rather than a silently
// defaulted value.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting above the
// factory function that called it.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout PaidUp.  It
// satisfies the standard error interface and supports errors.Is / errors.As /
// errors.Unwrap across all layers.
type AppError struct {
	// Code is the typed error code identifying the failure category.
	Code ErrorCode

	// Message is the primary human-readable description, suitable for API
	// responses returned to callers.
	Message string

	// Detail carries supplementary context (entity IDs, offending values)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Fields names the claim fields that caused the error, when known.
	// Populated by NewValidation / NewIncompleteData so the calling layer can
	// prompt for exactly the missing data.
	Fields []string

	// Cause is the underlying error, enabling errors.Is / errors.As traversal.
	Cause error

	// Stack is the formatted call stack captured at creation.  Not included
	// in Error() output; structured logging middleware reads it directly.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy with Detail set.  Safe on a nil receiver.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithFields returns a shallow copy with Fields set.  Safe on a nil receiver.
func (e *AppError) WithFields(fields ...string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Fields = fields
	return &clone
}

// WithCause returns a shallow copy with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.  If err is nil,
// Wrap returns nil so it can be used inline.  When err is already an
// *AppError and code is CodeUnknown, the original code is preserved so
// cross-layer propagation does not lose the domain classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// NewValidation constructs a CodeValidation AppError naming the offending
// fields.  Use for any missing or malformed required input.
func NewValidation(message string, fields ...string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
		Stack:   captureStack(1),
	}
}

// NewIndeterminateBasis constructs a CodeIndeterminateBasis AppError.  Raised
// when the interest calculator cannot select a statutory regime because a
// party type is unset; the calculator must never default silently.
func NewIndeterminateBasis(message string, fields ...string) *AppError {
	return &AppError{
		Code:    CodeIndeterminateBasis,
		Message: message,
		Fields:  fields,
		Stack:   captureStack(1),
	}
}

// NewIncompleteData constructs a CodeIncompleteData AppError naming each
// missing prerequisite so the caller can prompt for exactly those fields.
func NewIncompleteData(message string, missing ...string) *AppError {
	return &AppError{
		Code:    CodeIncompleteData,
		Message: message,
		Fields:  missing,
		Stack:   captureStack(1),
	}
}

// NewTemplateMismatch constructs a CodeTemplateMismatch AppError.  The form
// filler raises it before writing any output bytes; a partial overlay on a
// court form is never acceptable.
func NewTemplateMismatch(message string) *AppError {
	return &AppError{
		Code:    CodeTemplateMismatch,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Conflict constructs a CodeConflict AppError.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError for unexpected failures where
// no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err's chain carries CodeValidation.
func IsValidation(err error) bool { return IsCode(err, CodeValidation) }

// IsNotFound reports whether err's chain carries CodeNotFound.
func IsNotFound(err error) bool { return IsCode(err, CodeNotFound) }

// GetCode extracts the ErrorCode from the first *AppError in err's chain.
// If err is nil it returns CodeOK; if no *AppError is present, CodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// FieldsOf returns the offending field names from the first *AppError in
// err's chain, or nil when none are recorded.
func FieldsOf(err error) []string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
