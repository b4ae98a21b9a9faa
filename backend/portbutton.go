/*
 * backend/portbutton.go
 *
 * View-model for the per-port forward buttons in the UI.
 * - Maps a pod's container port to a default local port and drives the
 *   shared manager for start/stop.
 */

package backend

import (
	"context"
	"fmt"
)

// localPortBase offsets remote ports into a high local range so defaults
// rarely collide with developer services.
const localPortBase = 50000

// DefaultLocalPort maps a remote port to its suggested local port, saturating
// at the top of the port range.
func DefaultLocalPort(remotePort uint16) uint16 {
	local := uint32(localPortBase) + uint32(remotePort)
	if local > 65535 {
		return 65535
	}
	return uint16(local)
}

// PortButton is the UI-facing state of one forwardable port on a pod.
type PortButton struct {
	Namespace  string `json:"namespace"`
	Pod        string `json:"pod"`
	RemotePort uint16 `json:"remotePort"`
	LocalPort  uint16 `json:"localPort"`
	ForwardID  string `json:"forwardId,omitempty"`
}

// NewPortButton builds a button for one pod port with the default local port.
func NewPortButton(namespace, pod string, remotePort uint16) *PortButton {
	return &PortButton{
		Namespace:  namespace,
		Pod:        pod,
		RemotePort: remotePort,
		LocalPort:  DefaultLocalPort(remotePort),
	}
}

// instanceID groups a button's forwards under its pod.
func (b *PortButton) instanceID() string {
	return b.Namespace + "-" + b.Pod
}

// Start begins forwarding through the shared manager and records the id.
func (b *PortButton) Start(ctx context.Context) error {
	manager, err := ManagerInstance()
	if err != nil {
		return err
	}
	id, err := manager.StartForward(ctx, ForwardConfig{
		Namespace:  b.Namespace,
		Pod:        b.Pod,
		RemotePort: b.RemotePort,
		LocalPort:  b.LocalPort,
		InstanceID: b.instanceID(),
	})
	if err != nil {
		return err
	}
	b.ForwardID = id
	return nil
}

// Stop tears the button's forward down.
func (b *PortButton) Stop(ctx context.Context) error {
	if b.ForwardID == "" {
		return nil
	}
	manager, err := ManagerInstance()
	if err != nil {
		return err
	}
	if err := manager.StopForward(ctx, b.ForwardID); err != nil && !IsForwardNotFound(err) {
		return err
	}
	b.ForwardID = ""
	return nil
}

// Status returns the forward's current status, or empty when none is running.
func (b *PortButton) Status() ForwardStatus {
	if b.ForwardID == "" {
		return ""
	}
	manager, err := ManagerInstance()
	if err != nil {
		return ""
	}
	state, err := manager.GetForward(b.ForwardID)
	if err != nil {
		return ""
	}
	return state.Status
}

// CanOpenInBrowser reports whether the button should offer a browser link.
// Connecting and Reconnecting count: the listener is usually up before the
// first stream settles.
func (b *PortButton) CanOpenInBrowser() bool {
	switch b.Status() {
	case StatusActive, StatusConnecting, StatusReconnecting:
		return true
	default:
		return false
	}
}

// BrowserURL is the local address a browser should open for this forward.
func (b *PortButton) BrowserURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", b.LocalPort)
}
