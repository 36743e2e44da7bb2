package graph

// TaskID is an opaque, comparable-by-structure task identifier. Callers may use
// any scalar type (string, int, ...) or a Tuple for semantically nested
// identifiers (see InflateResults in package postprocess). Because a Tuple is
// slice-backed and therefore not a valid native Go map key, every TaskID-keyed
// collection in this package is built on IDMap rather than a literal map.
type TaskID = any

// Tuple is a fixed-length ordered sequence of scalars used both as a Dependency key
// selector and, when used as a task identifier, to carry nesting semantics.
type Tuple []any

// Args is the polymorphic argument tree passed to a task's function. A leaf may be
// a scalar, a Dependency, a map[string]any, or a []any/Tuple of further Args.
type Args = any

// FuncRef names a callable registered with the worker runtime. It is a plain string
// rather than a Go function value so that a Task can be gob-encoded and dispatched
// to a subprocess worker.
type FuncRef string

// Task is a single computation in the graph.
type Task struct {
	Fn   FuncRef
	Args Args
	Cost float64

	// index is the order in which the task was added to its Graph, used only to
	// break ties deterministically among equally-ready tasks during scheduling.
	index int
}

// Graph is a mapping from task identifier to task definition, together with the
// insertion order needed for deterministic tie-breaking.
type Graph struct {
	tasks *IDMap[Task]
}

// NewGraph returns an empty Graph ready for Add calls.
func NewGraph() *Graph {
	return &Graph{tasks: NewIDMap[Task]()}
}

// Add inserts or replaces a task definition under id, recording its insertion index
// the first time id is seen.
func (g *Graph) Add(id TaskID, t Task) {
	if existing, ok := g.tasks.Get(id); ok {
		t.index = existing.index
	} else {
		t.index = g.tasks.Len()
	}
	g.tasks.Set(id, t)
}

// Get returns the task definition for id.
func (g *Graph) Get(id TaskID) (Task, bool) {
	return g.tasks.Get(id)
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int { return g.tasks.Len() }

// IDs returns task identifiers in insertion order.
func (g *Graph) IDs() []TaskID {
	return g.tasks.Keys()
}

// Index returns the insertion-order index of id, used to break scheduling ties.
// It panics if id is not present, mirroring the precondition that callers only ask
// for the index of a task already known to the graph.
func (g *Graph) Index(id TaskID) int {
	t, ok := g.tasks.Get(id)
	if !ok {
		panic("graph: unknown task id passed to Index")
	}
	return t.index
}
