package worker

import (
	"encoding/gob"

	"taskgraph/graph"
)

// EnvSentinel is set in a spawned subprocess's environment to tell its main
// function to branch into RunChild before any CLI flag parsing happens.
const EnvSentinel = "TASKGRAPH_WORKER"

// Invocation is sent from the supervisor to a child over the gob pipe.
type Invocation struct {
	FuncRef FuncRef
	Args    any
	Slot    int
}

// Result is sent from a child back to the supervisor over the gob pipe.
type Result struct {
	Value any
	Err   string // empty means success; gob cannot carry the error interface directly
	Slot  int
}

func init() {
	// Concrete types that may appear behind an `any` in Invocation.Args or
	// Result.Value must be registered for gob to encode/decode them.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(graph.Tuple{})
	gob.Register(graph.Dependency{})
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(string(""))
	gob.Register(bool(false))
}
