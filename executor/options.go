package executor

import (
	"time"

	"taskgraph/telemetry"
	"taskgraph/worker"
)

type config struct {
	workers     int
	timeout     time.Duration
	haveTimeout bool
	costs       bool
	inflate     bool
	registry    *worker.Registry
	recorder    *telemetry.Recorder
}

// Option configures a call to ExecuteTaskLists.
type Option func(*config)

// WithWorkers bounds how many spawn operations the underlying worker
// supervisor may have in flight at once, guarding against a respawn storm when
// many tasks time out together. It does not change the number of worker process
// lists, which is fixed by the schedule.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithTimeout bounds how long the executor waits for a single task's result
// before killing and respawning the worker that was running it.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d; c.haveTimeout = true }
}

// WithCosts enables per-task wall-clock and wait-time cost telemetry, attached to
// the result mapping under the synthetic key "costs".
func WithCosts(enabled bool) Option {
	return func(c *config) { c.costs = enabled }
}

// WithInflate requests that the returned mapping be post-processed by
// postprocess.InflateResults before it is returned to the caller.
func WithInflate(enabled bool) Option {
	return func(c *config) { c.inflate = enabled }
}

// WithFuncRegistry supplies the registry the parent uses to validate, before
// spawning any worker, that every FuncRef named in the schedule is registered
// somewhere reachable. The registry is not itself used to invoke functions: that
// always happens inside a worker subprocess, which builds its own registry.
func WithFuncRegistry(r *worker.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithTelemetry attaches a telemetry.Recorder that receives structured logs and
// Prometheus cost metrics as the schedule executes.
func WithTelemetry(rec *telemetry.Recorder) Option {
	return func(c *config) { c.recorder = rec }
}
