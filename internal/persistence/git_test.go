package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSyncRepository_CreatesRoroDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// The clone target does not resolve; the sync must still fail with a
	// classified persistence error after bootstrapping ~/.roro/remote.
	target := filepath.Join(home, ".roro", "remote", "missing")
	err := SyncRepository(ctx, "file:///nonexistent/repo.git", target)
	if err == nil {
		t.Fatal("expected error for nonexistent repository")
	}
	if _, ok := KindOf(err); !ok {
		t.Fatalf("expected a persistence error, got %T: %v", err, err)
	}

	remote, err := RemoteDir()
	if err != nil {
		t.Fatal(err)
	}
	if remote != filepath.Join(home, ".roro", "remote") {
		t.Fatalf("unexpected remote dir: %s", remote)
	}
}

func TestClassifyGitError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", context.DeadlineExceeded, ErrNetwork},
		{"generic", errString("object not found"), ErrGit},
		{"refused", errString("dial tcp 10.0.0.1:22: connection refused"), ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyGitError(tc.err, "sync failed")
			if got.Kind != tc.want {
				t.Fatalf("expected kind %v, got %v (%s)", tc.want, got.Kind, got.Error())
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
