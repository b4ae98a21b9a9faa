/*
 * backend/portforward_manager.go
 *
 * Port forwarding manager facade.
 * - Owns the forward registry and spawns one supervisor per forward.
 * - Start is speculative: the forward is reported Active immediately and the
 *   health monitor or supervisor downgrades it when reality disagrees.
 */

package backend

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHealthCheckInterval = 30 * time.Second
	defaultReconnectDelay      = 5 * time.Second
	defaultMaxRetries          = 5
)

// Manager coordinates all port forwards for one cluster connection.
type Manager struct {
	client   *ClusterClient
	registry *forwardRegistry
	logger   *Logger

	healthCheckInterval time.Duration
	reconnectDelay      time.Duration
	maxRetries          int

	// openStream is the dial seam used by supervisors for each accepted
	// connection. Defaults to the cluster client's SPDY dial.
	openStream openStreamFunc

	healthMu   sync.Mutex
	healthStop chan struct{}
	healthDone chan struct{}
}

// NewManager builds a manager over an authenticated cluster client.
func NewManager(client *ClusterClient) *Manager {
	m := &Manager{
		client:              client,
		registry:            newForwardRegistry(),
		logger:              NewLogger(1000),
		healthCheckInterval: defaultHealthCheckInterval,
		reconnectDelay:      defaultReconnectDelay,
		maxRetries:          defaultMaxRetries,
	}
	if client != nil {
		m.openStream = client.OpenPortForward
	}
	return m
}

// WithHealthCheckInterval overrides the health probe cadence.
func (m *Manager) WithHealthCheckInterval(d time.Duration) *Manager {
	m.healthCheckInterval = d
	return m
}

// WithReconnectDelay overrides the base reconnect delay.
func (m *Manager) WithReconnectDelay(d time.Duration) *Manager {
	m.reconnectDelay = d
	return m
}

// WithMaxRetries overrides the reconnect budget per forward.
func (m *Manager) WithMaxRetries(n int) *Manager {
	m.maxRetries = n
	return m
}

// Logger exposes the manager's in-memory log.
func (m *Manager) Logger() *Logger {
	return m.logger
}

// StartForward registers a forward and spawns its supervisor. The returned id
// is stable for the forward's lifetime. A missing instance id is filled with
// a generated one so ids stay unique across anonymous callers.
func (m *Manager) StartForward(ctx context.Context, cfg ForwardConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if err := m.CheckPortAvailable(cfg.LocalPort); err != nil {
		return "", err
	}

	resolvedPod, err := resolvePodName(ctx, m.client.clientset, cfg.Namespace, cfg.Pod)
	if err != nil {
		return "", err
	}
	cfg.Pod = resolvedPod

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	id := forwardID(cfg.InstanceID, resolvedPod, cfg.LocalPort)
	state := &ForwardState{
		ID:     id,
		Config: cfg,
		Status: StatusConnecting,
	}
	handle := newSupervisorHandle()
	if err := m.registry.insertNew(state, handle); err != nil {
		return "", err
	}

	m.spawnSupervisor(id, cfg, handle)

	// Report Active right away; the supervisor or health monitor demotes the
	// forward if the listener never comes up.
	m.registry.mutate(id, func(s *ForwardState) {
		s.Status = StatusActive
	})

	m.logger.Info("port forward %s: started (%s/%s %d -> %d)",
		id, cfg.Namespace, cfg.Pod, cfg.RemotePort, cfg.LocalPort)
	return id, nil
}

func (m *Manager) spawnSupervisor(id string, cfg ForwardConfig, handle *supervisorHandle) {
	sup := &forwardSupervisor{
		manager:    m,
		id:         id,
		namespace:  cfg.Namespace,
		pod:        cfg.Pod,
		remotePort: cfg.RemotePort,
		localPort:  cfg.LocalPort,
		handle:     handle,
	}
	go sup.run()
}

// StopForward removes the forward and shuts its supervisor down. Stopping is
// graceful: the forward never transitions to Failed on this path.
func (m *Manager) StopForward(ctx context.Context, id string) error {
	handle, err := m.registry.remove(id)
	if err != nil {
		return err
	}

	handle.signalShutdown()
	select {
	case <-handle.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("port forward %s: stopped", id)
	return nil
}

// ReconnectForward retires the forward's supervisor and starts a fresh one
// after a linear backoff. Each attempt waits reconnectDelay multiplied by the
// new retry count. A forward past its retry budget is marked Failed and left
// alone.
func (m *Manager) ReconnectForward(ctx context.Context, id string) error {
	state, err := m.registry.get(id)
	if err != nil {
		return err
	}

	// Check and increment under one registry lock hold so concurrent callers
	// can never push the retry count past the budget.
	var attempt int
	var exhausted bool
	if !m.registry.mutate(id, func(s *ForwardState) {
		if s.RetryCount >= m.maxRetries {
			s.Status = StatusFailed
			exhausted = true
			return
		}
		s.Status = StatusReconnecting
		s.RetryCount++
		attempt = s.RetryCount
	}) {
		return coreErrorf(ErrForwardNotFound, "%s", id)
	}
	if exhausted {
		m.logger.Warn("port forward %s: retry budget exhausted after %d attempts", id, state.RetryCount)
		return &CoreError{
			Kind: ErrPortForwarding,
			Msg:  "Max retries exceeded for port forward " + id,
			Err:  ErrMaxRetriesExceeded,
		}
	}

	delay := m.reconnectDelay * time.Duration(attempt)
	m.logger.Info("port forward %s: reconnect attempt %d in %s", id, attempt, delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	handle := newSupervisorHandle()
	old, ok := m.registry.swapHandle(id, handle)
	if !ok {
		// Stopped while we were sleeping.
		return coreErrorf(ErrForwardNotFound, "%s", id)
	}
	if old != nil {
		// Wait for the old supervisor to release the listener so the new one
		// can bind the same port.
		old.signalShutdown()
		select {
		case <-old.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.spawnSupervisor(id, state.Config, handle)
	m.registry.mutate(id, func(s *ForwardState) {
		s.Status = StatusActive
	})
	return nil
}

// GetForward returns a snapshot of one forward.
func (m *Manager) GetForward(id string) (ForwardState, error) {
	return m.registry.get(id)
}

// ListForwards returns snapshots of all forwards.
func (m *Manager) ListForwards() []ForwardState {
	return m.registry.list()
}

// ListForwardsByInstance returns snapshots of the forwards one instance owns.
func (m *Manager) ListForwardsByInstance(instanceID string) []ForwardState {
	return m.registry.listByInstance(instanceID)
}

// StopAllForwards stops every registered forward. Errors are logged and
// swallowed so one stuck supervisor cannot wedge shutdown.
func (m *Manager) StopAllForwards(ctx context.Context) {
	for _, state := range m.registry.list() {
		if err := m.StopForward(ctx, state.ID); err != nil && !IsForwardNotFound(err) {
			m.logger.Warn("port forward %s: stop failed: %v", state.ID, err)
		}
	}
}

// CheckPortAvailable probes whether the local port can be bound right now.
// The probe is inherently racy against other processes; the supervisor's own
// bind is the authority.
func (m *Manager) CheckPortAvailable(port uint16) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.FormatUint(uint64(port), 10))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return portInUseError(port)
	}
	listener.Close()
	return nil
}

// FindAvailablePort returns the first bindable local port at or above start.
func (m *Manager) FindAvailablePort(start uint16) (uint16, error) {
	for port := uint32(start); port <= 65535; port++ {
		if err := m.CheckPortAvailable(uint16(port)); err == nil {
			return uint16(port), nil
		}
	}
	return 0, coreErrorf(ErrPortForwarding, "no available ports found starting from %d", start)
}
