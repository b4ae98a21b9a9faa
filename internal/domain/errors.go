package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain layer failures.
type ErrorKind int

const (
	// ErrProcessing indicates a failed processing operation.
	ErrProcessing ErrorKind = iota
	// ErrValidation indicates a failed validation.
	ErrValidation
	// ErrHandlerNotFound indicates no handler is registered for an operation.
	ErrHandlerNotFound
	// ErrInvalidState indicates an entity in an invalid state.
	ErrInvalidState
	// ErrTimeout indicates a domain operation timed out.
	ErrTimeout
	// ErrAppConfigValidation indicates an invalid app configuration.
	ErrAppConfigValidation
	// ErrPortForwardingValidation indicates an invalid port forwarding definition.
	ErrPortForwardingValidation
)

func (k ErrorKind) prefix() string {
	switch k {
	case ErrProcessing:
		return "Processing error"
	case ErrValidation:
		return "Validation error"
	case ErrHandlerNotFound:
		return "Handler not found"
	case ErrInvalidState:
		return "Invalid entity state"
	case ErrTimeout:
		return "Operation timeout"
	case ErrAppConfigValidation:
		return "App config validation error"
	case ErrPortForwardingValidation:
		return "Port forwarding validation error"
	default:
		return "Domain error"
	}
}

// Error is the domain layer error type.
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

// Errorf builds a domain error from a format string.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of a domain error, or false when err is not one.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
