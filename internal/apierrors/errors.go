// Package apierrors defines the error taxonomy shared by every component:
// a fixed set of kinds, each classifiable with errors.As regardless of how
// deeply the underlying cause has been wrapped.
package apierrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound          Kind = "not_found"
	Forbidden         Kind = "forbidden"
	Conflict          Kind = "conflict"
	Validation        Kind = "validation"
	ToolchainError    Kind = "toolchain_error"
	ToolchainMissing  Kind = "toolchain_unavailable"
	TranscriptionErr  Kind = "transcription_error"
	StorageError      Kind = "storage_error"
	DatabaseError     Kind = "database_error"
	TimeoutErr        Kind = "timeout"
	CancelledErr      Kind = "cancelled"
	TooManyRequests   Kind = "too_many_requests"
)

// Error wraps a cause with a classification kind and an operator-facing
// message. Build one with New; check one with Is/As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func Newf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err (or anything it wraps) is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of err if it (or something it wraps) is an *Error,
// and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
