/*
 * backend/portforward_health.go
 *
 * Periodic liveness probing of active forwards.
 * - Dials each forward's local listener and records the probe time.
 * - An Active forward that stops answering is marked Failed. The monitor
 *   never removes forwards and never triggers reconnects itself.
 */

package backend

import (
	"net"
	"strconv"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// StartHealthMonitoring launches the background health loop. Calling it again
// while a loop is running is a no-op.
func (m *Manager) StartHealthMonitoring() {
	m.healthMu.Lock()
	defer m.healthMu.Unlock()
	if m.healthStop != nil {
		return
	}
	m.healthStop = make(chan struct{})
	m.healthDone = make(chan struct{})
	go m.healthLoop(m.healthStop, m.healthDone)
}

// StopHealthMonitoring stops the health loop and waits for it to exit.
func (m *Manager) StopHealthMonitoring() {
	m.healthMu.Lock()
	stop, done := m.healthStop, m.healthDone
	m.healthStop, m.healthDone = nil, nil
	m.healthMu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *Manager) healthLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.runHealthChecks()
		}
	}
}

// runHealthChecks probes every registered forward once. Only Active forwards
// can change state here: a healthy one gets its retry budget back, an
// unhealthy one is demoted to Failed.
func (m *Manager) runHealthChecks() {
	for _, state := range m.registry.list() {
		healthy := probeLocalPort(state.Config.LocalPort)
		now := time.Now()

		m.registry.mutate(state.ID, func(s *ForwardState) {
			s.LastHealthCheck = &now
			if s.Status != StatusActive {
				return
			}
			if healthy {
				s.RetryCount = 0
			} else {
				s.Status = StatusFailed
			}
		})

		if !healthy && state.Status == StatusActive {
			m.logger.Warn("port forward %s: health check failed on port %d", state.ID, state.Config.LocalPort)
		}
	}
}

// probeLocalPort reports whether something is accepting on the local port.
func probeLocalPort(port uint16) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.FormatUint(uint64(port), 10))
	conn, err := net.DialTimeout("tcp", addr, healthProbeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
