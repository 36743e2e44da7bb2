package scheduler

import "taskgraph/graph"

// Step is a single scheduled unit of work: the function to invoke and its
// (still-unresolved) argument tree.
type Step struct {
	Fn   graph.FuncRef
	Args graph.Args
}

// Barrier records that a task's start time on its chosen worker strictly
// exceeded that worker's clock at placement time, i.e. the worker had to wait on
// a cross-worker dependency. The executor does not read Barriers; it
// synchronizes all workers at every round boundary instead.
type Barrier struct {
	Predecessors []graph.TaskID
	Worker       int
	Index        int
}

// Schedule is the output of EarliestFinishTime: per-worker ordered lists of
// steps, the task identifier(s) occupying each slot, and barrier bookkeeping.
//
// TaskIDs[w][i] is either a graph.TaskID (a single task occupies the slot) or a
// []graph.TaskID (a multiplexed slot: one execution whose result is broadcast to
// every listed identifier).
type Schedule struct {
	TaskLists [][]Step
	TaskIDs   [][]any
	Barriers  []Barrier
}
