package scheduler

import (
	"fmt"

	"taskgraph/graph"
)

// EarliestFinishTime partitions g across workers using a static list-scheduling
// heuristic: at each step, the ready task with the largest cost-to-completion
// (longest remaining critical path) is placed on the worker that would finish it
// earliest.
func EarliestFinishTime(g *graph.Graph, workers int, opts ...Option) (*Schedule, error) {
	if workers < 1 {
		return nil, invalidWorkerCount(workers)
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	fullIDs := g.IDs()
	fullSucc := graph.SuccessorGraph(g)
	if cyclePath := detectCycle(fullIDs, fullSucc); cyclePath != nil {
		return nil, cycleError(formatPath(cyclePath))
	}

	for _, id := range cfg.outputTasks {
		if _, ok := g.Get(id); !ok {
			return nil, unknownTask(id)
		}
	}

	pg := g
	if len(cfg.outputTasks) > 0 {
		pg = prune(g, cfg.outputTasks)
	}

	ids := pg.IDs()
	succ := graph.SuccessorGraph(pg)

	costOf := func(id graph.TaskID) float64 {
		t, _ := pg.Get(id)
		if cfg.haveTimeout {
			cap := cfg.timeout.Seconds()
			if t.Cost > cap {
				return cap
			}
		}
		return t.Cost
	}

	priorityMemo := make(map[string]float64, len(ids))
	var priority func(id graph.TaskID) float64
	priority = func(id graph.TaskID) float64 {
		key := graph.CanonicalKey(id)
		if v, ok := priorityMemo[key]; ok {
			return v
		}
		best := 0.0
		succOf, _ := succ.Get(id)
		for _, s := range succOf {
			if c := priority(s); c > best {
				best = c
			}
		}
		total := costOf(id) + best
		priorityMemo[key] = total
		return total
	}

	depsOf := make(map[string][]graph.TaskID, len(ids))
	for _, id := range ids {
		t, _ := pg.Get(id)
		depsOf[graph.CanonicalKey(id)] = graph.ListDependencies(t.Args)
	}

	placed := make(map[string]bool, len(ids))
	finishTime := make(map[string]float64, len(ids))
	clock := make([]float64, workers)
	taskLists := make([][]Step, workers)
	taskIDLists := make([][]any, workers)

	isReady := func(id graph.TaskID) bool {
		for _, d := range depsOf[graph.CanonicalKey(id)] {
			if !placed[graph.CanonicalKey(d)] {
				return false
			}
		}
		return true
	}

	var barriers []Barrier

	remaining := len(ids)
	for remaining > 0 {
		var ready []graph.TaskID
		for _, id := range ids {
			if !placed[graph.CanonicalKey(id)] && isReady(id) {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			// Every remaining task has an unplaced dependency; since the graph was
			// already proven acyclic, this cannot happen.
			return nil, &SchedulingError{Kind: ErrCycleFound, Msg: "scheduling deadlock on an already-validated acyclic graph"}
		}

		best := ready[0]
		for _, cand := range ready[1:] {
			if priority(cand) > priority(best) || (priority(cand) == priority(best) && pg.Index(cand) < pg.Index(best)) {
				best = cand
			}
		}

		group := []graph.TaskID{best}
		bestTask, _ := pg.Get(best)
		for _, cand := range ready {
			if graph.CanonicalKey(cand) == graph.CanonicalKey(best) || placed[graph.CanonicalKey(cand)] {
				continue
			}
			candTask, _ := pg.Get(cand)
			if candTask.Fn == bestTask.Fn && graph.DeepEqual(candTask.Args, bestTask.Args) {
				group = append(group, cand)
			}
		}

		maxDepFinish := 0.0
		for _, d := range depsOf[graph.CanonicalKey(best)] {
			if f := finishTime[graph.CanonicalKey(d)]; f > maxDepFinish {
				maxDepFinish = f
			}
		}

		chosen := 0
		chosenStart := maxf(clock[0], maxDepFinish)
		for w := 1; w < workers; w++ {
			start := maxf(clock[w], maxDepFinish)
			if start < chosenStart {
				chosen = w
				chosenStart = start
			}
		}

		cost := costOf(best)
		if chosenStart > clock[chosen] {
			barriers = append(barriers, Barrier{
				Predecessors: append([]graph.TaskID(nil), depsOf[graph.CanonicalKey(best)]...),
				Worker:       chosen,
				Index:        len(taskLists[chosen]),
			})
		}

		taskLists[chosen] = append(taskLists[chosen], Step{Fn: bestTask.Fn, Args: bestTask.Args})
		if len(group) == 1 {
			taskIDLists[chosen] = append(taskIDLists[chosen], group[0])
		} else {
			taskIDLists[chosen] = append(taskIDLists[chosen], append([]graph.TaskID(nil), group...))
		}

		finish := chosenStart + cost
		clock[chosen] = finish
		for _, id := range group {
			k := graph.CanonicalKey(id)
			placed[k] = true
			finishTime[k] = finish
			remaining--
		}
	}

	return &Schedule{TaskLists: taskLists, TaskIDs: taskIDLists, Barriers: barriers}, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func formatPath(ids []graph.TaskID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%v", id)
	}
	return out
}

// prune restricts g to the transitive predecessor closure of outputs, preserving
// the original relative insertion order of kept tasks.
func prune(g *graph.Graph, outputs []graph.TaskID) *graph.Graph {
	keep := make(map[string]bool)
	var stack []graph.TaskID
	for _, id := range outputs {
		if k := graph.CanonicalKey(id); !keep[k] {
			keep[k] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := g.Get(id)
		if !ok {
			continue
		}
		for _, dep := range graph.ListDependencies(t.Args) {
			if k := graph.CanonicalKey(dep); !keep[k] {
				keep[k] = true
				stack = append(stack, dep)
			}
		}
	}

	out := graph.NewGraph()
	for _, id := range g.IDs() {
		if keep[graph.CanonicalKey(id)] {
			t, _ := g.Get(id)
			out.Add(id, t)
		}
	}
	return out
}
