/*
 * backend/portforward_supervisor.go
 *
 * Per-forward supervisor goroutine.
 * - Owns the local listener for one forward and proxies each accepted
 *   connection over its own port-forward stream.
 * - Listener failures mark the forward Failed and hand it to the reconnect
 *   path; individual connection failures are logged and absorbed.
 */

package backend

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// openStreamFunc dials one bidirectional stream to remotePort on the pod.
// The manager's default is ClusterClient.OpenPortForward; tests substitute a
// local pipe.
type openStreamFunc func(ctx context.Context, namespace, pod string, remotePort uint16) (io.ReadWriteCloser, error)

// forwardSupervisor runs the accept loop for one forward.
type forwardSupervisor struct {
	manager    *Manager
	id         string
	namespace  string
	pod        string
	remotePort uint16
	localPort  uint16
	handle     *supervisorHandle
}

// run is the supervisor body. It returns when shutdown is signalled or the
// listener dies. Graceful shutdown never mutates forward state; the registry
// entry is already gone or about to be.
func (s *forwardSupervisor) run() {
	defer close(s.handle.done)

	addr := net.JoinHostPort("127.0.0.1", strconv.FormatUint(uint64(s.localPort), 10))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.manager.logger.Warn("port forward %s: failed to bind %s: %v", s.id, addr, err)
		s.failAndMaybeReconnect()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Closing the listener is the only way to unblock Accept. The watcher
	// also exits with the accept loop so a failed supervisor leaves nothing
	// behind.
	runDone := make(chan struct{})
	defer close(runDone)
	go func() {
		select {
		case <-s.handle.shutdown:
		case <-runDone:
		}
		cancel()
		listener.Close()
	}()

	s.manager.registry.mutate(s.id, func(state *ForwardState) {
		state.Status = StatusActive
	})
	s.manager.logger.Info("port forward %s: listening on %s", s.id, addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.handle.shutdown:
				return
			default:
			}
			s.manager.logger.Warn("port forward %s: accept failed: %v", s.id, err)
			listener.Close()
			s.failAndMaybeReconnect()
			return
		}
		go s.proxyConnection(ctx, conn)
	}
}

// failAndMaybeReconnect marks the forward Failed and, when retries remain,
// hands it to the manager's reconnect path. A shutdown that raced the failure
// wins: the state is left untouched.
func (s *forwardSupervisor) failAndMaybeReconnect() {
	select {
	case <-s.handle.shutdown:
		return
	default:
	}

	var retryCount int
	present := s.manager.registry.mutate(s.id, func(state *ForwardState) {
		state.Status = StatusFailed
		retryCount = state.RetryCount
	})
	if !present {
		return
	}

	if retryCount < s.manager.maxRetries {
		go func() {
			if err := s.manager.ReconnectForward(context.Background(), s.id); err != nil {
				s.manager.logger.Warn("port forward %s: reconnect failed: %v", s.id, err)
			}
		}()
	}
}

// proxyConnection pumps bytes between one local connection and one fresh
// remote stream. Failures here affect only this connection.
func (s *forwardSupervisor) proxyConnection(ctx context.Context, local net.Conn) {
	remote, err := s.manager.openStream(ctx, s.namespace, s.pod, s.remotePort)
	if err != nil {
		s.manager.logger.Warn("port forward %s: failed to open stream: %v", s.id, err)
		local.Close()
		return
	}

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			local.Close()
			remote.Close()
		})
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			closeBoth()
		case <-done:
		}
	}()

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(remote, local)
		closeBoth()
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(local, remote)
		closeBoth()
		return err
	})

	err = g.Wait()
	close(done)
	if err != nil && err != io.EOF {
		s.manager.logger.Debug("port forward %s: connection closed: %v", s.id, err)
	}
}
