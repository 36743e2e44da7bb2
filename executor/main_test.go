package executor

import (
	"fmt"
	"os"
	"testing"
	"time"

	"taskgraph/worker"
)

// TestMain lets the test binary re-exec itself as a worker subprocess, the same
// way a production binary branches in its real main() (see cmd/taskgraph). This
// is what makes ExecuteTaskLists's supervisor.Spawn(ctx) (which re-execs
// os.Executable()) work against the test binary itself.
func TestMain(m *testing.M) {
	if os.Getenv(worker.EnvSentinel) == "1" {
		if err := worker.RunChild(testRegistry()); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func testRegistry() *worker.Registry {
	reg := worker.NewRegistry()
	reg.Register("increment", func(args any) (any, error) {
		return args.(int) + 1, nil
	})
	reg.Register("double", func(args any) (any, error) {
		return args.(int) * 2, nil
	})
	reg.Register("fail", func(args any) (any, error) {
		return nil, fmt.Errorf("boom")
	})
	reg.Register("sleep", func(args any) (any, error) {
		d, _ := args.(int)
		time.Sleep(time.Duration(d) * time.Millisecond)
		return "done", nil
	})
	return reg
}
