/*
 * backend/internal/persistence/store.go
 *
 * Workstation configuration store.
 * - Loads and saves the app reference list kept in ~/.roro/config.json.
 * - Creates the file with an empty array on first load.
 */

package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	roroDirName      = ".roro"
	remoteDirName    = "remote"
	configFileName   = "config.json"
	configFilePerm   = 0o644
	configDirPerm    = 0o755
	defaultSyncEvery = 300 // milliseconds
)

// AppReference points at a git repository holding configuration for one app.
type AppReference struct {
	Name           string `json:"name"`
	GitURL         string `json:"gitUrl"`
	LocalPath      string `json:"localPath,omitempty"`
	SyncInterval   int    `json:"syncInterval,omitempty"`
	KubectlContext string `json:"kubectlContext,omitempty"`
}

// WorkstationConfig is the full list of app references on this workstation.
type WorkstationConfig []AppReference

// RoroDir returns the workstation state directory, ~/.roro.
func RoroDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", NewError(ErrInvalidInput,
			"cannot determine home directory; HOME must be set", err)
	}
	return filepath.Join(home, roroDirName), nil
}

// RemoteDir returns the directory repositories are synced into, ~/.roro/remote.
func RemoteDir() (string, error) {
	dir, err := RoroDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, remoteDirName), nil
}

// ConfigPath returns the workstation configuration file path, ~/.roro/config.json.
func ConfigPath() (string, error) {
	dir, err := RoroDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadWorkstationConfig reads the workstation configuration. A missing file is
// created containing an empty array so later edits have a well-formed target.
func LoadWorkstationConfig() (WorkstationConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, Errorf(ErrSerialization, "failed to read configuration file %s: %v", path, err)
		}
		if err := initConfigFile(path); err != nil {
			return nil, err
		}
		return WorkstationConfig{}, nil
	}

	var config WorkstationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, Errorf(ErrSerialization, "failed to parse configuration file %s: %v", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveWorkstationConfig writes the full app reference list back to disk.
func SaveWorkstationConfig(config WorkstationConfig) error {
	if err := config.validate(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return Errorf(ErrInvalidInput, "failed to create directory %s: %v", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return Errorf(ErrSerialization, "failed to marshal configuration: %v", err)
	}
	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return Errorf(ErrSerialization, "failed to write configuration file %s: %v", path, err)
	}
	return nil
}

func initConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return Errorf(ErrInvalidInput, "failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("[]"), configFilePerm); err != nil {
		return Errorf(ErrSerialization, "failed to initialize configuration file %s: %v", path, err)
	}
	return nil
}

// FindApp returns the app reference with the given name.
func (c WorkstationConfig) FindApp(name string) (AppReference, bool) {
	for _, app := range c {
		if app.Name == name {
			return app, true
		}
	}
	return AppReference{}, false
}

func (c WorkstationConfig) validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, app := range c {
		if app.Name == "" {
			return Errorf(ErrInvalidInput, "app reference with empty name")
		}
		if _, dup := seen[app.Name]; dup {
			return Errorf(ErrInvalidInput, "duplicate app reference name %q", app.Name)
		}
		seen[app.Name] = struct{}{}
	}
	return nil
}

// ResolveLocalPath returns the checkout directory for the app, defaulting to
// ~/.roro/remote/<name> when no explicit path is configured.
func (a AppReference) ResolveLocalPath() (string, error) {
	if a.LocalPath != "" {
		return a.LocalPath, nil
	}
	remote, err := RemoteDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(remote, a.Name), nil
}

// ResolveSyncInterval returns the sync interval in milliseconds, applying the
// default when unset.
func (a AppReference) ResolveSyncInterval() int {
	if a.SyncInterval > 0 {
		return a.SyncInterval
	}
	return defaultSyncEvery
}
