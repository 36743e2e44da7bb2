package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskgraph/config"
	"taskgraph/scheduler"
)

const (
	ExitSuccess         = 0
	ExitInvalidInput    = 1
	ExitSchedulingError = 2
	ExitGraphFailure    = 3
	ExitInternalError   = 4
)

// Invocation is the fully canonicalized description of a single run.
type Invocation struct {
	GraphPath string
	Workers   int
	Timeout   time.Duration
	Costs     bool
	Inflate   bool
	Outputs   []string
}

// InvocationError marks an error as originating from malformed input rather
// than an internal failure, so ExitCode can distinguish the two.
type InvocationError struct {
	Message string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInputf(format string, args ...any) error {
	return &InvocationError{Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses args (excluding argv[0]) into a canonical Invocation.
// Flags are bound through viper, so TASKGRAPH_WORKERS / TASKGRAPH_TIMEOUT /
// TASKGRAPH_JSON_LOG environment variables and an optional ~/.taskgraph.yaml
// participate in the same precedence chain as the flags themselves: an
// explicitly-passed flag wins, otherwise the environment, otherwise the config
// file, otherwise the built-in default.
func ParseInvocation(args []string) (*Invocation, error) {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "taskgraph",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(*cobra.Command, []string) error { return nil },
	}
	cmd.SetArgs(args)

	cmd.Flags().String("graph", "", "path to the task graph JSON file")
	cmd.Flags().Int("workers", 0, "number of parallel workers")
	cmd.Flags().Duration("timeout", 0, "per-task timeout (0 disables the timeout)")
	cmd.Flags().Bool("costs", false, "attach per-task cost telemetry to the result")
	cmd.Flags().Bool("inflate", false, "inflate tuple-keyed task identifiers into nested maps")
	cmd.Flags().String("output", "", "comma-separated task identifiers to prune the schedule to")

	for _, name := range []string{"graph", "workers", "timeout", "costs", "inflate", "output"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("cli: bind flag %q: %w", name, err)
		}
	}

	if err := cmd.Execute(); err != nil {
		return nil, invalidInputf("%v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	graphPath := v.GetString("graph")
	if strings.TrimSpace(graphPath) == "" {
		return nil, invalidInputf("--graph is required")
	}

	inv := &Invocation{
		GraphPath: graphPath,
		Workers:   cfg.Workers,
		Timeout:   v.GetDuration("timeout"),
		Costs:     v.GetBool("costs"),
		Inflate:   v.GetBool("inflate"),
	}

	if raw := strings.TrimSpace(v.GetString("output")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				inv.Outputs = append(inv.Outputs, p)
			}
		}
	}

	return inv, nil
}

// ExitCode extracts a semantic exit code from an error returned by
// ParseInvocation or Execute. Errors it does not recognize map to
// ExitInternalError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return ExitInvalidInput
	}
	var schedErr *scheduler.SchedulingError
	if errors.As(err, &schedErr) {
		return ExitSchedulingError
	}
	return ExitInternalError
}
