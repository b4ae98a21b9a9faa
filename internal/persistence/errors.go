package persistence

import (
	"errors"
	"fmt"
)

// ErrorKind classifies persistence layer failures.
type ErrorKind int

const (
	// ErrDatabase indicates a failed database operation.
	ErrDatabase ErrorKind = iota
	// ErrNotFound indicates a missing entity or file.
	ErrNotFound
	// ErrInvalidInput indicates invalid input data.
	ErrInvalidInput
	// ErrSerialization indicates a failed encode or decode.
	ErrSerialization
	// ErrGit indicates a failed git operation.
	ErrGit
	// ErrNetwork indicates a network failure during a git operation.
	ErrNetwork
	// ErrAuthentication indicates an authentication failure during a git operation.
	ErrAuthentication
)

func (k ErrorKind) prefix() string {
	switch k {
	case ErrDatabase:
		return "Database error"
	case ErrNotFound:
		return "Not found"
	case ErrInvalidInput:
		return "Invalid input"
	case ErrSerialization:
		return "Serialization error"
	case ErrGit:
		return "Git error"
	case ErrNetwork:
		return "Network error"
	case ErrAuthentication:
		return "Authentication error"
	default:
		return "Persistence error"
	}
}

// Error is the persistence layer error type. Higher layers wrap it without
// reformatting so user-facing messages keep a single kind prefix.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.prefix(), e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a persistence error with an optional wrapped cause.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Errorf builds a persistence error from a format string.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of a persistence error, or false when err is not one.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
