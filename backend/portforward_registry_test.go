package backend

import (
	"testing"
	"time"
)

func newState(id string) *ForwardState {
	return &ForwardState{
		ID: id,
		Config: ForwardConfig{
			Namespace:  "default",
			Pod:        "api",
			RemotePort: 80,
			LocalPort:  8080,
			InstanceID: "inst",
		},
		Status: StatusConnecting,
	}
}

func TestRegistryInsertDuplicate(t *testing.T) {
	r := newForwardRegistry()
	if err := r.insertNew(newState("a"), newSupervisorHandle()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := r.insertNew(newState("a"), newSupervisorHandle())
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if kind, ok := CoreErrorKindOf(err); !ok || kind != ErrPortForwarding {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := newForwardRegistry()
	handle := newSupervisorHandle()
	if err := r.insertNew(newState("a"), handle); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := r.remove("a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got != handle {
		t.Fatal("remove returned a different handle")
	}
	if _, err := r.remove("a"); !IsForwardNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := r.handle("a"); ok {
		t.Fatal("handle survived removal")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := newForwardRegistry()
	if err := r.insertNew(newState("a"), newSupervisorHandle()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snapshot, err := r.get("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snapshot.Status = StatusFailed
	snapshot.RetryCount = 99

	live, err := r.get("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if live.Status != StatusConnecting || live.RetryCount != 0 {
		t.Fatalf("mutation leaked into registry: %+v", live)
	}
}

func TestRegistryHealthTimestampCopy(t *testing.T) {
	r := newForwardRegistry()
	if err := r.insertNew(newState("a"), newSupervisorHandle()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	at := time.Now()
	if !r.mutate("a", func(s *ForwardState) { s.LastHealthCheck = &at }) {
		t.Fatal("mutate on existing forward returned false")
	}

	snapshot, _ := r.get("a")
	if snapshot.LastHealthCheck == nil || !snapshot.LastHealthCheck.Equal(at) {
		t.Fatalf("health timestamp = %v", snapshot.LastHealthCheck)
	}
	*snapshot.LastHealthCheck = time.Time{}

	live, _ := r.get("a")
	if live.LastHealthCheck == nil || !live.LastHealthCheck.Equal(at) {
		t.Fatal("timestamp pointer shared with caller")
	}
}

func TestRegistryMutateMissing(t *testing.T) {
	r := newForwardRegistry()
	if r.mutate("missing", func(*ForwardState) {}) {
		t.Fatal("mutate on missing forward returned true")
	}
}

func TestRegistrySwapHandle(t *testing.T) {
	r := newForwardRegistry()
	first := newSupervisorHandle()
	if err := r.insertNew(newState("a"), first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := newSupervisorHandle()
	old, ok := r.swapHandle("a", second)
	if !ok || old != first {
		t.Fatalf("swapHandle = %v, %v", old, ok)
	}
	current, ok := r.handle("a")
	if !ok || current != second {
		t.Fatal("handle not swapped")
	}

	if _, ok := r.swapHandle("missing", newSupervisorHandle()); ok {
		t.Fatal("swapHandle on missing forward succeeded")
	}
}

func TestSupervisorHandleSignalIdempotent(t *testing.T) {
	h := newSupervisorHandle()
	h.signalShutdown()
	h.signalShutdown()
	select {
	case <-h.shutdown:
	default:
		t.Fatal("shutdown channel not closed")
	}
}
