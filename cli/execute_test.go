package cli

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskgraph/worker"
)

// TestMain lets the test binary re-exec itself as a worker subprocess, the
// same way the production binary branches in cmd/taskgraph/main.go. This is
// what makes Execute's underlying executor.ExecuteTaskLists (which re-execs
// os.Executable()) work against the test binary itself.
func TestMain(m *testing.M) {
	if os.Getenv(worker.EnvSentinel) == "1" {
		if err := worker.RunChild(DefaultRegistry()); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestExecuteRunsAGraphToCompletion(t *testing.T) {
	path := writeGraphFile(t, `{
		"tasks": {
			"a": {"func": "identity", "cost": 1, "args": 2},
			"b": {"func": "sum", "cost": 1, "args": [{"$dep": "a"}, 3]}
		}
	}`)

	inv := &Invocation{GraphPath: path, Workers: 2}
	res, err := Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(res.Output, &out))
	assert.Equal(t, 2.0, out["a"])
	assert.Equal(t, 5.0, out["b"])
}

func TestExecuteReportsTaskFailureAsGraphFailure(t *testing.T) {
	path := writeGraphFile(t, `{
		"tasks": {
			"a": {"func": "fail", "cost": 1, "args": "boom"}
		}
	}`)

	inv := &Invocation{GraphPath: path, Workers: 1}
	res, err := Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, ExitGraphFailure, res.ExitCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(res.Output, &out))
	cell, ok := out["a"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UserError", cell["type"])
}

func TestExecuteRejectsUnknownGraphPath(t *testing.T) {
	inv := &Invocation{GraphPath: "/does/not/exist.json", Workers: 1}
	res, err := Execute(context.Background(), inv)
	assert.Error(t, err)
	assert.Equal(t, ExitGraphFailure, res.ExitCode)
}

func TestExecuteAcceptsInflateFlag(t *testing.T) {
	// sum/identity both operate on plain identifiers here; inflation is exercised
	// at the postprocess layer directly (see postprocess_test.go) — this test
	// only checks that Execute wires the flag through without erroring.
	path := writeGraphFile(t, `{"tasks": {"a": {"func": "identity", "cost": 1, "args": 1}}}`)
	inv := &Invocation{GraphPath: path, Workers: 1, Inflate: true}
	res, err := Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
}
