package executor

import "time"

// Costs records one task's measured wall-clock time and its wait before
// dispatch. Waits holds a single entry, keyed "round_start": the delay between
// the start of the task's round and its dispatch to the worker. Per-predecessor
// delays are not recorded. Only tasks that return a value get a Costs entry.
type Costs struct {
	Wall  time.Duration
	Waits map[any]time.Duration
}

// CostsKey is the synthetic task identifier under which the whole-run cost
// mapping is attached to the result, when WithCosts(true) is set.
const CostsKey = "costs"
