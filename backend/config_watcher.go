/*
 * backend/config_watcher.go
 *
 * Watches the workstation configuration file for edits.
 * - Watches the containing directory so atomic replace-style saves are seen.
 * - Changes are debounced before the reload callback fires.
 */

package backend

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roro-kube/app/internal/persistence"
)

const configWatcherDebounceInterval = 500 * time.Millisecond

// ConfigWatcher reports edits to the workstation configuration file so the
// shell can reload its app list without restarting.
type ConfigWatcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	logger     *Logger
	onChange   func()
	stopCh     chan struct{}
	stoppedCh  chan struct{}
}

// NewConfigWatcher starts watching the workstation config file. The onChange
// callback fires after edits settle for the debounce interval. The UI shell
// owns the watcher's lifetime and must call Stop when it shuts down.
func NewConfigWatcher(logger *Logger, onChange func()) (*ConfigWatcher, error) {
	configPath, err := persistence.ConfigPath()
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, wrapCoreError(ErrBridge, "failed to create config watcher: "+err.Error(), err)
	}

	// Editors and the store itself replace the file, so watch the directory.
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		fsWatcher.Close()
		return nil, wrapCoreError(ErrBridge,
			"failed to watch config directory: "+err.Error(), err)
	}

	w := &ConfigWatcher{
		watcher:    fsWatcher,
		configPath: filepath.Clean(configPath),
		logger:     logger,
		onChange:   onChange,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}

	go w.eventLoop()
	return w, nil
}

func (w *ConfigWatcher) eventLoop() {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	pending := false

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isRelevantConfigEvent(event) {
				continue
			}
			if filepath.Clean(event.Name) != w.configPath {
				continue
			}

			pending = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(configWatcherDebounceInterval)
			debounceCh = debounceTimer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error: %v", err)

		case <-debounceCh:
			debounceCh = nil
			if pending && w.onChange != nil {
				pending = false
				w.onChange()
			}
		}
	}
}

func isRelevantConfigEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *ConfigWatcher) Stop() {
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	w.watcher.Close()
	<-w.stoppedCh
}
