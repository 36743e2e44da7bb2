package graph

// ListDependencies walks an arbitrarily nested argument tree and returns the
// de-duplicated, insertion-ordered list of distinct TaskID values referenced. A
// bare Dependency at the root returns a singleton list. Scalars return an empty
// list.
func ListDependencies(args Args) []TaskID {
	seen := make(map[string]struct{})
	var out []TaskID
	var walk func(v any)
	walk = func(v any) {
		switch tv := v.(type) {
		case Dependency:
			k := CanonicalKey(tv.TaskID)
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, tv.TaskID)
			}
		case map[string]any:
			for _, sub := range tv {
				walk(sub)
			}
		case []any:
			for _, sub := range tv {
				walk(sub)
			}
		case Tuple:
			for _, sub := range tv {
				walk(sub)
			}
		default:
			// scalar leaf: no dependency
		}
	}
	walk(args)
	return out
}

// SuccessorGraph returns, for each task, the list of tasks whose argument tree
// references it (direct successors), in deterministic insertion order.
func SuccessorGraph(g *Graph) *IDMap[[]TaskID] {
	out := NewIDMap[[]TaskID]()
	for _, id := range g.IDs() {
		out.Set(id, nil)
	}
	for _, id := range g.IDs() {
		task, _ := g.Get(id)
		for _, dep := range ListDependencies(task.Args) {
			existing, _ := out.Get(dep)
			out.Set(dep, append(existing, id))
		}
	}
	return out
}

// ReverseGraph reverses a simple adjacency mapping.
func ReverseGraph(adj *IDMap[[]TaskID]) *IDMap[[]TaskID] {
	out := NewIDMap[[]TaskID]()
	adj.Range(func(from TaskID, _ []TaskID) bool {
		if !out.Has(from) {
			out.Set(from, nil)
		}
		return true
	})
	adj.Range(func(from TaskID, tos []TaskID) bool {
		for _, to := range tos {
			existing, _ := out.Get(to)
			out.Set(to, append(existing, from))
		}
		return true
	})
	return out
}
