// Package apperror defines the error taxonomy shared by every module.
//
// Errors carry a Kind that survives JSON encoding, so a failure raised inside
// the task or auth module reaches the HTTP surface with its category intact.
package apperror

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindStorage      Kind = "storage_error"
	KindUnexpected   Kind = "unexpected_error"
)

// Stable user-facing messages.
const (
	MsgStorage            = "An error occurred while accessing the database. Please try again later."
	MsgUnexpected         = "An unexpected error occurred. Please try again later."
	MsgTaskNotFound       = "Task not found"
	MsgInvalidCredentials = "Invalid credentials."
	MsgInvalidTaskID      = "Invalid task ID."
)

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrUnexpected   = &Error{Kind: KindUnexpected}
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation builds a validation error with per-field reasons.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Storage wraps a data-layer failure behind the stable storage message.
func Storage(cause error) *Error { return Wrap(KindStorage, MsgStorage, cause) }

// Unexpected wraps an uncategorized failure behind the stable unexpected message.
func Unexpected(cause error) *Error { return Wrap(KindUnexpected, MsgUnexpected, cause) }

// KindOf returns the kind of err, or KindUnexpected when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// From converts any error into an *Error. Uncategorized errors become unexpected.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}
