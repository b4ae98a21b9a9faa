/*
 * backend/kubeconfig.go
 *
 * Kubeconfig context selection.
 * - Enumerates and validates contexts from the user's kubeconfig.
 * - Resolves the config path from an explicit override, KUBECONFIG, or the
 *   platform home directory.
 */

package backend

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// kubeconfigPathOverride redirects kubeconfig loading for the whole process.
// Guarded by a lock so concurrent readers never observe a torn value.
var kubeconfigPathOverride struct {
	mu   sync.RWMutex
	path string
}

// SetKubeconfigPath overrides the kubeconfig location for all subsequent
// loads. An empty path restores the default resolution order.
func SetKubeconfigPath(path string) {
	kubeconfigPathOverride.mu.Lock()
	defer kubeconfigPathOverride.mu.Unlock()
	kubeconfigPathOverride.path = path
}

func kubeconfigOverridePath() string {
	kubeconfigPathOverride.mu.RLock()
	defer kubeconfigPathOverride.mu.RUnlock()
	return kubeconfigPathOverride.path
}

// DefaultKubeconfigPath resolves the kubeconfig file location: the process
// override wins, then the KUBECONFIG environment variable, then
// <home>/.kube/config.
func DefaultKubeconfigPath() (string, error) {
	if path := kubeconfigOverridePath(); path != "" {
		return path, nil
	}
	if path := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", wrapCoreError(ErrKubeconfig,
			"unable to determine home directory for default kubeconfig path", err)
	}
	return filepath.Join(home, ".kube", "config"), nil
}

// loadKubeconfig reads and parses the kubeconfig at the resolved path.
func loadKubeconfig() (*clientcmdapi.Config, error) {
	path, err := DefaultKubeconfigPath()
	if err != nil {
		return nil, err
	}
	config, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, wrapCoreError(ErrKubeconfig, "failed to read kubeconfig file: "+err.Error(), err)
	}
	return config, nil
}

// ListContexts returns the names of all contexts in the kubeconfig, sorted.
func ListContexts() ([]string, error) {
	config, err := loadKubeconfig()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(config.Contexts))
	for name := range config.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentContextName returns the kubeconfig's current context.
func CurrentContextName() (string, error) {
	config, err := loadKubeconfig()
	if err != nil {
		return "", err
	}
	if config.CurrentContext == "" {
		return "", coreErrorf(ErrKubeconfig, "no current context set in kubeconfig")
	}
	return config.CurrentContext, nil
}

// ValidateContext confirms the named context exists in the kubeconfig.
func ValidateContext(contextName string) error {
	config, err := loadKubeconfig()
	if err != nil {
		return err
	}
	if _, ok := config.Contexts[contextName]; !ok {
		return coreErrorf(ErrContextNotFound,
			"context %q not found in kubeconfig", contextName)
	}
	return nil
}
