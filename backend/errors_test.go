package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roro-kube/app/internal/domain"
	"github.com/roro-kube/app/internal/persistence"
)

func TestCoreErrorMessages(t *testing.T) {
	cases := []struct {
		err  *CoreError
		want string
	}{
		{coreErrorf(ErrKubeconfig, "bad file"), "Kubeconfig error: bad file"},
		{coreErrorf(ErrCluster, "api down"), "Kubernetes error: api down"},
		{coreErrorf(ErrConnection, "reset"), "Connection error: reset"},
		{coreErrorf(ErrContextNotFound, "staging"), "Context not found: staging"},
		{coreErrorf(ErrPortForwarding, "boom"), "Port forwarding error: boom"},
		{portInUseError(8080), "Port 8080 is already in use"},
		{coreErrorf(ErrForwardNotFound, "inst-api-9000"), "Port forward not found: inst-api-9000"},
		{coreErrorf(ErrValidation, "empty pod"), "Validation error: empty pod"},
		{coreErrorf(ErrBridge, "marshal"), "Bridge error: marshal"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}

func TestWrapPersistenceErrorKeepsMessage(t *testing.T) {
	inner := persistence.Errorf(persistence.ErrGit, "clone failed")
	wrapped := WrapPersistenceError(inner)

	require.Equal(t, "Persistence error: Git error: clone failed", wrapped.Error())
	assert.Equal(t, 1, strings.Count(wrapped.Error(), "Persistence error:"),
		"kind prefix must appear exactly once")

	kind, ok := persistence.KindOf(wrapped)
	require.True(t, ok, "inner kind reachable through the wrapper")
	assert.Equal(t, persistence.ErrGit, kind)
}

func TestWrapDomainErrorKeepsMessage(t *testing.T) {
	inner := domain.Errorf(domain.ErrValidation, "name required")
	wrapped := WrapDomainError(inner)

	require.Equal(t, "Domain error: Validation error: name required", wrapped.Error())

	kind, ok := domain.KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, domain.ErrValidation, kind)
}

func TestCoreErrorPredicates(t *testing.T) {
	assert.True(t, IsPortInUse(portInUseError(80)))
	assert.False(t, IsPortInUse(coreErrorf(ErrCluster, "x")))

	assert.True(t, IsForwardNotFound(coreErrorf(ErrForwardNotFound, "id")))
	assert.True(t, IsContextNotFound(coreErrorf(ErrContextNotFound, "ctx")))

	budget := &CoreError{Kind: ErrPortForwarding, Msg: "Max retries exceeded for port forward x", Err: ErrMaxRetriesExceeded}
	assert.True(t, IsMaxRetriesExceeded(budget))
	assert.False(t, IsMaxRetriesExceeded(coreErrorf(ErrPortForwarding, "other")))

	kind, ok := CoreErrorKindOf(budget)
	require.True(t, ok)
	assert.Equal(t, ErrPortForwarding, kind)

	_, ok = CoreErrorKindOf(nil)
	assert.False(t, ok)
}
