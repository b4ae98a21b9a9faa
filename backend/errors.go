/*
 * backend/errors.go
 *
 * Core layer error taxonomy.
 * - Wraps domain and persistence errors without reformatting their messages.
 * - Carries typed kinds the manager facade and CLI dispatch on.
 */

package backend

import (
	"errors"
	"fmt"

	"github.com/roro-kube/app/internal/domain"
	"github.com/roro-kube/app/internal/persistence"
)

// CoreErrorKind classifies core layer failures.
type CoreErrorKind int

const (
	// ErrDomain wraps a domain layer error.
	ErrDomain CoreErrorKind = iota
	// ErrPersistence wraps a persistence layer error.
	ErrPersistence
	// ErrKubeconfig indicates an unreadable or invalid kubeconfig.
	ErrKubeconfig
	// ErrCluster indicates a cluster API failure.
	ErrCluster
	// ErrConnection indicates a failed connection on the data path.
	ErrConnection
	// ErrContextNotFound indicates the named context is absent from the kubeconfig.
	ErrContextNotFound
	// ErrPortForwarding indicates a port forwarding failure.
	ErrPortForwarding
	// ErrPortInUse indicates the requested local port is already bound.
	ErrPortInUse
	// ErrForwardNotFound indicates no forward is registered under the given id.
	ErrForwardNotFound
	// ErrValidation indicates rejected input.
	ErrValidation
	// ErrBridge indicates a bridge transformation failure.
	ErrBridge
)

// ErrMaxRetriesExceeded marks a reconnect refused because the forward burned
// through its retry budget. Wrapped inside an ErrPortForwarding CoreError.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// CoreError is the error type surfaced by the manager facade and the cluster
// client. Lower layer errors are wrapped, not reworded, so a message never
// carries a doubled kind prefix.
type CoreError struct {
	Kind CoreErrorKind
	Msg  string
	Port uint16 // set for ErrPortInUse
	Err  error
}

func (e *CoreError) Error() string {
	switch e.Kind {
	case ErrDomain:
		return fmt.Sprintf("Domain error: %s", e.Msg)
	case ErrPersistence:
		return fmt.Sprintf("Persistence error: %s", e.Msg)
	case ErrKubeconfig:
		return fmt.Sprintf("Kubeconfig error: %s", e.Msg)
	case ErrCluster:
		return fmt.Sprintf("Kubernetes error: %s", e.Msg)
	case ErrConnection:
		return fmt.Sprintf("Connection error: %s", e.Msg)
	case ErrContextNotFound:
		return fmt.Sprintf("Context not found: %s", e.Msg)
	case ErrPortForwarding:
		return fmt.Sprintf("Port forwarding error: %s", e.Msg)
	case ErrPortInUse:
		return fmt.Sprintf("Port %d is already in use", e.Port)
	case ErrForwardNotFound:
		return fmt.Sprintf("Port forward not found: %s", e.Msg)
	case ErrValidation:
		return fmt.Sprintf("Validation error: %s", e.Msg)
	case ErrBridge:
		return fmt.Sprintf("Bridge error: %s", e.Msg)
	default:
		return e.Msg
	}
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreErrorf(kind CoreErrorKind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapCoreError(kind CoreErrorKind, msg string, err error) *CoreError {
	return &CoreError{Kind: kind, Msg: msg, Err: err}
}

// WrapDomainError lifts a domain error into the core layer, keeping the
// original message intact.
func WrapDomainError(err *domain.Error) *CoreError {
	return &CoreError{Kind: ErrDomain, Msg: err.Error(), Err: err}
}

// WrapPersistenceError lifts a persistence error into the core layer, keeping
// the original message intact.
func WrapPersistenceError(err *persistence.Error) *CoreError {
	return &CoreError{Kind: ErrPersistence, Msg: err.Error(), Err: err}
}

func portInUseError(port uint16) *CoreError {
	return &CoreError{Kind: ErrPortInUse, Port: port}
}

// CoreErrorKindOf reports the kind of a core error, or false when err is not one.
func CoreErrorKindOf(err error) (CoreErrorKind, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// IsPortInUse reports whether err is a local port conflict.
func IsPortInUse(err error) bool {
	kind, ok := CoreErrorKindOf(err)
	return ok && kind == ErrPortInUse
}

// IsForwardNotFound reports whether err means no forward exists under the id.
func IsForwardNotFound(err error) bool {
	kind, ok := CoreErrorKindOf(err)
	return ok && kind == ErrForwardNotFound
}

// IsContextNotFound reports whether err means the kube context is unknown.
func IsContextNotFound(err error) bool {
	kind, ok := CoreErrorKindOf(err)
	return ok && kind == ErrContextNotFound
}

// IsMaxRetriesExceeded reports whether err is a refused reconnect caused by an
// exhausted retry budget.
func IsMaxRetriesExceeded(err error) bool {
	return errors.Is(err, ErrMaxRetriesExceeded)
}
