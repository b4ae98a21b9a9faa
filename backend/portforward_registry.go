/*
 * backend/portforward_registry.go
 *
 * Concurrent registry of forward states and their supervisor handles.
 * Both maps are guarded by one mutex so a forward's state and its supervisor
 * handle can never disagree about existence.
 */

package backend

import "sync"

// supervisorHandle is the registry's control channel pair for one running
// supervisor goroutine. Closing shutdown asks the supervisor to stop; done is
// closed by the supervisor when it has fully exited.
type supervisorHandle struct {
	shutdown     chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
}

// signalShutdown closes the shutdown channel exactly once, so stop and
// reconnect can race without panicking.
func (h *supervisorHandle) signalShutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

func newSupervisorHandle() *supervisorHandle {
	return &supervisorHandle{
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

type forwardRegistry struct {
	mu       sync.Mutex
	forwards map[string]*ForwardState
	handles  map[string]*supervisorHandle
}

func newForwardRegistry() *forwardRegistry {
	return &forwardRegistry{
		forwards: make(map[string]*ForwardState),
		handles:  make(map[string]*supervisorHandle),
	}
}

// insertNew registers a forward in Connecting state together with its
// supervisor handle. Fails when the id is already taken.
func (r *forwardRegistry) insertNew(state *ForwardState, handle *supervisorHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forwards[state.ID]; exists {
		return coreErrorf(ErrPortForwarding, "Port forward already exists: %s", state.ID)
	}
	r.forwards[state.ID] = state
	r.handles[state.ID] = handle
	return nil
}

// remove deletes a forward and returns its handle so the caller can signal
// shutdown outside the lock.
func (r *forwardRegistry) remove(id string) (*supervisorHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forwards[id]; !exists {
		return nil, coreErrorf(ErrForwardNotFound, "%s", id)
	}
	handle := r.handles[id]
	delete(r.forwards, id)
	delete(r.handles, id)
	return handle, nil
}

// get returns a detached copy of the state.
func (r *forwardRegistry) get(id string) (ForwardState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, exists := r.forwards[id]
	if !exists {
		return ForwardState{}, coreErrorf(ErrForwardNotFound, "%s", id)
	}
	return copyState(state), nil
}

// list returns detached copies of every registered forward.
func (r *forwardRegistry) list() []ForwardState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ForwardState, 0, len(r.forwards))
	for _, state := range r.forwards {
		out = append(out, copyState(state))
	}
	return out
}

// listByInstance returns detached copies of the forwards owned by one instance.
func (r *forwardRegistry) listByInstance(instanceID string) []ForwardState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ForwardState
	for _, state := range r.forwards {
		if state.Config.InstanceID == instanceID {
			out = append(out, copyState(state))
		}
	}
	return out
}

// mutate applies f to the live state under the lock. Returns false when the
// forward no longer exists, which callers treat as a concurrent stop.
func (r *forwardRegistry) mutate(id string, f func(*ForwardState)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, exists := r.forwards[id]
	if !exists {
		return false
	}
	f(state)
	return true
}

// handle returns the supervisor handle for a forward, if any.
func (r *forwardRegistry) handle(id string) (*supervisorHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

// swapHandle installs a replacement supervisor handle, returning the previous
// one. Used by reconnect to retire the old supervisor.
func (r *forwardRegistry) swapHandle(id string, handle *supervisorHandle) (*supervisorHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forwards[id]; !exists {
		return nil, false
	}
	old := r.handles[id]
	r.handles[id] = handle
	return old, true
}

func copyState(s *ForwardState) ForwardState {
	out := *s
	if s.LastHealthCheck != nil {
		t := *s.LastHealthCheck
		out.LastHealthCheck = &t
	}
	return out
}
