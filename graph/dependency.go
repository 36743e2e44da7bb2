package graph

// Dependency is a reference, embedded in a task's argument tree, to another task's
// (possibly nested) result.
type Dependency struct {
	TaskID TaskID

	// Key selects into the referenced result. nil means "the whole result"; a
	// scalar selects a single map key or slice index; a Tuple applies each
	// selector in turn.
	Key any

	// Multiplier is a positive integer, default 1, carried only for diagnostic
	// messages when resolution fails. It is never consulted during resolution.
	Multiplier int
}

// NewDependency constructs a Dependency, defaulting Multiplier to 1 when given as
// zero.
func NewDependency(taskID TaskID, key any, multiplier int) Dependency {
	if multiplier == 0 {
		multiplier = 1
	}
	return Dependency{TaskID: taskID, Key: key, Multiplier: multiplier}
}

// IsNonStringIterable reports whether v is a slice or Tuple (and therefore eligible
// for element-wise recursion by ListDependencies and the resolver). Dependency is
// explicitly excluded even though its Key field may itself be a Tuple.
func IsNonStringIterable(v any) bool {
	switch v.(type) {
	case Tuple, []any:
		return true
	default:
		return false
	}
}
