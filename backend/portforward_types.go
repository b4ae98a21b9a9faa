/*
 * backend/portforward_types.go
 *
 * Shared types for the port forwarding manager.
 */

package backend

import (
	"fmt"
	"time"
)

// ForwardStatus is the lifecycle state of one forward.
type ForwardStatus string

const (
	// StatusConnecting means the forward is being established.
	StatusConnecting ForwardStatus = "Connecting"
	// StatusActive means the local listener is serving traffic.
	StatusActive ForwardStatus = "Active"
	// StatusFailed means the forward died and is not being retried.
	StatusFailed ForwardStatus = "Failed"
	// StatusReconnecting means a reconnect is in progress.
	StatusReconnecting ForwardStatus = "Reconnecting"
)

// ForwardConfig is the user-supplied definition of one forward.
// Pod may name a pod exactly or be a prefix that the manager resolves against
// live pods in the namespace.
type ForwardConfig struct {
	Namespace  string `json:"namespace"`
	Pod        string `json:"pod"`
	RemotePort uint16 `json:"remotePort"`
	LocalPort  uint16 `json:"localPort"`
	InstanceID string `json:"instanceId"`
}

// Validate rejects configs that cannot possibly start.
func (c ForwardConfig) Validate() error {
	if c.Namespace == "" {
		return coreErrorf(ErrValidation, "namespace cannot be empty")
	}
	if c.Pod == "" {
		return coreErrorf(ErrValidation, "pod cannot be empty")
	}
	if c.RemotePort == 0 {
		return coreErrorf(ErrValidation, "remote port cannot be 0")
	}
	if c.LocalPort == 0 {
		return coreErrorf(ErrValidation, "local port cannot be 0")
	}
	return nil
}

// ForwardState is the registry's record of one forward. The manager hands out
// detached copies, never pointers into the registry.
type ForwardState struct {
	ID              string        `json:"id"`
	Config          ForwardConfig `json:"config"`
	Status          ForwardStatus `json:"status"`
	LastHealthCheck *time.Time    `json:"lastHealthCheck,omitempty"`
	RetryCount      int           `json:"retryCount"`
}

// forwardID derives the registry key from the instance, the resolved pod name
// and the local port. Two forwards with the same local port under the same
// instance always collide here.
func forwardID(instanceID, resolvedPod string, localPort uint16) string {
	return fmt.Sprintf("%s-%s-%d", instanceID, resolvedPod, localPort)
}
