package cli

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TASKGRAPH_WORKERS", "TASKGRAPH_TIMEOUT", "TASKGRAPH_JSON_LOG"} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestParseInvocationRequiresGraphFlag(t *testing.T) {
	clearEnv(t)
	_, err := ParseInvocation([]string{"--workers", "2"})
	require.Error(t, err)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestParseInvocationAppliesFlagDefaults(t *testing.T) {
	clearEnv(t)
	inv, err := ParseInvocation([]string{"--graph", "graph.json"})
	require.NoError(t, err)
	assert.Equal(t, "graph.json", inv.GraphPath)
	assert.Equal(t, 1, inv.Workers)
	assert.Equal(t, 30*time.Second, inv.Timeout)
	assert.False(t, inv.Costs)
	assert.False(t, inv.Inflate)
	assert.Nil(t, inv.Outputs)
}

func TestParseInvocationExplicitFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKGRAPH_WORKERS", "7")

	inv, err := ParseInvocation([]string{"--graph", "g.json", "--workers", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Workers)
}

func TestParseInvocationFallsBackToEnvironmentWhenFlagNotSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKGRAPH_WORKERS", "7")
	t.Setenv("TASKGRAPH_TIMEOUT", "5s")

	inv, err := ParseInvocation([]string{"--graph", "g.json"})
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Workers)
	assert.Equal(t, 5*time.Second, inv.Timeout)
}

func TestParseInvocationParsesOutputsList(t *testing.T) {
	clearEnv(t)
	inv, err := ParseInvocation([]string{"--graph", "g.json", "--output", "a, b ,c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, inv.Outputs)
}

func TestParseInvocationRejectsUnknownFlag(t *testing.T) {
	clearEnv(t)
	_, err := ParseInvocation([]string{"--graph", "g.json", "--bogus"})
	require.Error(t, err)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestExitCodeMapsInvocationErrorsToInvalidInput(t *testing.T) {
	assert.Equal(t, ExitInvalidInput, ExitCode(&InvocationError{Message: "bad"}))
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitInternalError, ExitCode(os.ErrClosed))
}
