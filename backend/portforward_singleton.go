/*
 * backend/portforward_singleton.go
 *
 * Process-wide manager singleton.
 * - Exactly one Manager exists per process; concurrent initializers race for
 *   a single winner under the package lock.
 */

package backend

import (
	"context"
	"sync"
)

var (
	managerMu       sync.Mutex
	managerInstance *Manager
)

// InitializeManager installs the process-wide manager. Fails when one is
// already installed.
func InitializeManager(client *ClusterClient) (*Manager, error) {
	managerMu.Lock()
	defer managerMu.Unlock()
	if managerInstance != nil {
		return nil, coreErrorf(ErrPortForwarding, "port forward manager already initialized")
	}
	managerInstance = NewManager(client)
	managerInstance.StartHealthMonitoring()
	return managerInstance, nil
}

// ManagerInstance returns the installed manager.
func ManagerInstance() (*Manager, error) {
	managerMu.Lock()
	defer managerMu.Unlock()
	if managerInstance == nil {
		return nil, coreErrorf(ErrPortForwarding, "port forward manager not initialized")
	}
	return managerInstance, nil
}

// GetOrInitManager returns the installed manager, initializing one for the
// given kubeconfig context on first use. An empty contextName selects the
// kubeconfig's current context. Concurrent callers all receive the same
// instance.
func GetOrInitManager(ctx context.Context, contextName string) (*Manager, error) {
	managerMu.Lock()
	defer managerMu.Unlock()
	if managerInstance != nil {
		return managerInstance, nil
	}

	var (
		client *ClusterClient
		err    error
	)
	if contextName == "" {
		client, err = NewClusterClient()
	} else {
		client, err = NewClusterClientWithContext(contextName)
	}
	if err != nil {
		return nil, err
	}

	managerInstance = NewManager(client)
	managerInstance.StartHealthMonitoring()
	return managerInstance, nil
}

// IsManagerInitialized reports whether a manager has been installed.
func IsManagerInitialized() bool {
	managerMu.Lock()
	defer managerMu.Unlock()
	return managerInstance != nil
}
