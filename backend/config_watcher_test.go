package backend

import (
	"testing"
	"time"

	"github.com/roro-kube/app/internal/persistence"
)

func TestConfigWatcherFiresOnSave(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// Create the config file and its directory up front so the watch target
	// exists.
	if _, err := persistence.LoadWorkstationConfig(); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	changed := make(chan struct{}, 1)
	w, err := NewConfigWatcher(NewLogger(10), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	defer w.Stop()

	if err := persistence.SaveWorkstationConfig(persistence.WorkstationConfig{
		{Name: "api", GitURL: "https://example.com/api.git"},
	}); err != nil {
		t.Fatalf("save config: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the config change")
	}
}

func TestConfigWatcherStopIdempotent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := persistence.LoadWorkstationConfig(); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	w, err := NewConfigWatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	w.Stop()
	w.Stop()
}
