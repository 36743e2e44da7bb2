package scheduler

import (
	"time"

	"taskgraph/graph"
)

type config struct {
	outputTasks []graph.TaskID
	timeout     time.Duration
	haveTimeout bool
}

// Option configures a call to EarliestFinishTime.
type Option func(*config)

// WithOutputTasks restricts scheduling to the transitive predecessor closure of
// the given task identifiers.
func WithOutputTasks(ids ...graph.TaskID) Option {
	return func(c *config) { c.outputTasks = ids }
}

// WithTimeout caps each task's cost, for scheduling purposes only, at d seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d; c.haveTimeout = true }
}
