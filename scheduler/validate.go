package scheduler

import "taskgraph/graph"

// detectCycle performs a deterministic DFS (gray/black coloring, mirroring Kahn's
// algorithm failure mode) over the graph's successor adjacency and returns a
// single stable witness cycle path, or nil if the graph is acyclic.
//
// All internal bookkeeping is keyed by graph.CanonicalKey rather than TaskID
// directly: a TaskID may be a graph.Tuple, which cannot serve as a native map
// key in Go.
func detectCycle(ids []graph.TaskID, succ *graph.IDMap[[]graph.TaskID]) []graph.TaskID {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(ids))
	parent := make(map[string]graph.TaskID)
	hasParent := make(map[string]bool)
	for _, id := range ids {
		color[graph.CanonicalKey(id)] = white
	}

	var cycle []graph.TaskID

	var dfs func(u graph.TaskID) bool
	dfs = func(u graph.TaskID) bool {
		uKey := graph.CanonicalKey(u)
		color[uKey] = gray
		succOf, _ := succ.Get(u)
		for _, v := range succOf {
			vKey := graph.CanonicalKey(v)
			switch color[vKey] {
			case white:
				parent[vKey] = u
				hasParent[vKey] = true
				if dfs(v) {
					return true
				}
			case gray:
				cycle = append(cycle, v)
				cur := u
				curKey := uKey
				for curKey != vKey && hasParent[curKey] {
					cycle = append(cycle, cur)
					cur = parent[curKey]
					curKey = graph.CanonicalKey(cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[uKey] = black
		return false
	}

	for _, id := range ids {
		if color[graph.CanonicalKey(id)] != white {
			continue
		}
		if dfs(id) {
			break
		}
	}

	if len(cycle) == 0 {
		return nil
	}

	rev := make([]graph.TaskID, len(cycle))
	for i := range cycle {
		rev[i] = cycle[len(cycle)-1-i]
	}
	return rev
}
