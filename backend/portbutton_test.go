package backend

import (
	"context"
	"testing"
)

func TestDefaultLocalPort(t *testing.T) {
	cases := []struct {
		remote uint16
		want   uint16
	}{
		{80, 50080},
		{8080, 58080},
		{15535, 65535},
		{15536, 65535},
		{65535, 65535},
	}
	for _, tc := range cases {
		if got := DefaultLocalPort(tc.remote); got != tc.want {
			t.Fatalf("DefaultLocalPort(%d) = %d, want %d", tc.remote, got, tc.want)
		}
	}
}

func TestPortButtonDefaults(t *testing.T) {
	b := NewPortButton("default", "api", 8080)
	if b.LocalPort != 58080 {
		t.Fatalf("local port = %d", b.LocalPort)
	}
	if b.instanceID() != "default-api" {
		t.Fatalf("instance id = %q", b.instanceID())
	}
	if b.BrowserURL() != "http://127.0.0.1:58080" {
		t.Fatalf("url = %q", b.BrowserURL())
	}
}

func TestPortButtonWithoutManager(t *testing.T) {
	resetManagerSingleton(t)

	b := NewPortButton("default", "api", 8080)
	if err := b.Start(context.Background()); err == nil {
		t.Fatal("start should fail before manager init")
	}
	if b.CanOpenInBrowser() {
		t.Fatal("no forward means no browser link")
	}
	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("stop with no forward: %v", err)
	}
}

func TestPortButtonLifecycle(t *testing.T) {
	resetManagerSingleton(t)

	m := newTestManager(t, testPod("default", "api"))
	managerMu.Lock()
	managerInstance = m
	managerMu.Unlock()

	b := NewPortButton("default", "api", 8080)
	b.LocalPort = freeLocalPort(t)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if b.ForwardID == "" {
		t.Fatal("forward id not recorded")
	}
	if !b.CanOpenInBrowser() {
		t.Fatalf("button should be openable while %q", b.Status())
	}

	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if b.ForwardID != "" {
		t.Fatal("forward id not cleared")
	}
	if b.Status() != "" {
		t.Fatalf("status after stop = %q", b.Status())
	}
}
