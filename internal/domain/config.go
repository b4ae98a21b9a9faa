/*
 * backend/internal/domain/config.go
 *
 * Configuration schemas stored inside synced app repositories.
 * - AppConfig describes one app: manifests plus its forward definitions.
 * - EnvironmentConfig carries per-environment values.
 */

package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfigFileName is the configuration file expected at the root of each
// synced app repository.
const AppConfigFileName = "app.json"

// ForwardSpec is one port-forward entry inside an app configuration file.
// LocalPort is kept as a string because config authors may template it.
type ForwardSpec struct {
	LocalPort string `json:"localport"`
	Name      string `json:"name"`
	Port      uint16 `json:"port"`
	Kind      string `json:"kind"`
}

// Validate checks a forward spec for structural problems.
func (f ForwardSpec) Validate() error {
	if f.LocalPort == "" {
		return Errorf(ErrPortForwardingValidation, "localport cannot be empty")
	}
	port, err := strconv.ParseUint(f.LocalPort, 10, 16)
	if err != nil {
		return Errorf(ErrPortForwardingValidation,
			"localport %q must be a valid port number (1-65535)", f.LocalPort)
	}
	if port == 0 {
		return Errorf(ErrPortForwardingValidation, "localport cannot be 0")
	}
	if f.Name == "" {
		return Errorf(ErrPortForwardingValidation, "name cannot be empty")
	}
	if f.Kind == "" {
		return Errorf(ErrPortForwardingValidation, "kind cannot be empty")
	}
	return nil
}

// AppConfig is the app.json schema inside each synced repository.
type AppConfig struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	ManifestsPath  string        `json:"manifestsPath"`
	PortForwarding []ForwardSpec `json:"portForwarding,omitempty"`
}

// Validate checks the app configuration and all of its forward specs.
func (a AppConfig) Validate() error {
	if a.Name == "" {
		return Errorf(ErrAppConfigValidation, "name cannot be empty")
	}
	if a.ManifestsPath == "" {
		return Errorf(ErrAppConfigValidation, "manifestsPath cannot be empty")
	}
	for i, spec := range a.PortForwarding {
		if err := spec.Validate(); err != nil {
			var msg string
			if de, ok := err.(*Error); ok {
				msg = de.Msg
			} else {
				msg = err.Error()
			}
			return Errorf(ErrAppConfigValidation, "portForwarding[%d]: %s", i, msg)
		}
	}
	return nil
}

// LoadAppConfig reads and validates the app configuration inside a synced
// repository checkout.
func LoadAppConfig(repoPath string) (*AppConfig, error) {
	path := filepath.Join(repoPath, AppConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Errorf(ErrHandlerNotFound, "no %s in %s", AppConfigFileName, repoPath)
		}
		return nil, Errorf(ErrProcessing, "failed to read %s: %v", path, err)
	}

	var config AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, Errorf(ErrProcessing, "failed to parse %s: %v", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// EnvironmentConfig is the environment.json schema.
type EnvironmentConfig struct {
	Name   string                     `json:"name"`
	Values map[string]json.RawMessage `json:"values"`
}

// Validate checks the environment configuration.
func (e EnvironmentConfig) Validate() error {
	if e.Name == "" {
		return Errorf(ErrAppConfigValidation, "environment name cannot be empty")
	}
	return nil
}
