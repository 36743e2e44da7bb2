package postprocess

import (
	"errors"

	"taskgraph/graph"
	"taskgraph/scheduler"
)

// ErrMultiplexWithoutIDs is returned by CollectResults when taskIDs is nil but
// taskLists contains two or more steps with the same Fn and structurally
// equivalent Args (graph.DeepEqual) — exactly the condition under which
// scheduler.EarliestFinishTime would have multiplexed them into one slot shared
// by multiple identifiers. Without taskIDs there is no way to recover which
// synthetic (worker, index) keys should alias to the same result, so the
// combination is rejected rather than guessed at.
var ErrMultiplexWithoutIDs = errors.New("postprocess: multiplexed slot found with no task identifiers supplied")

// CollectResults flattens per-worker raw cells into a single mapping keyed by
// task identifier. If taskIDs is nil, synthetic keys graph.Tuple{worker,
// withinWorkerIndex} are used instead. Multiplexed slots (taskIDs[w][i] holding
// a []graph.TaskID) expand to one entry per aliased identifier, all sharing the
// same cell.
//
// The result is a *graph.IDMap rather than a literal Go map: task identifiers
// may be graph.Tuple values, and Go panics at runtime if a slice-backed value
// is ever used as a native map key.
func CollectResults(taskLists [][]scheduler.Step, taskIDs [][]any, raw [][]graph.Cell) (*graph.IDMap[graph.Cell], error) {
	if taskIDs == nil && hasDuplicateStep(taskLists) {
		return nil, ErrMultiplexWithoutIDs
	}

	out := graph.NewIDMap[graph.Cell]()
	for w, cells := range raw {
		for i, cell := range cells {
			if taskIDs == nil {
				out.Set(graph.Tuple{w, i}, cell)
				continue
			}

			var entry any
			if w < len(taskIDs) && i < len(taskIDs[w]) {
				entry = taskIDs[w][i]
			}

			switch v := entry.(type) {
			case []graph.TaskID:
				for _, id := range v {
					out.Set(id, cell)
				}
			case nil:
				out.Set(graph.Tuple{w, i}, cell)
			default:
				out.Set(v, cell)
			}
		}
	}
	return out, nil
}

func hasDuplicateStep(taskLists [][]scheduler.Step) bool {
	var seen []scheduler.Step
	for _, list := range taskLists {
		for _, step := range list {
			for _, s := range seen {
				if s.Fn == step.Fn && graph.DeepEqual(s.Args, step.Args) {
					return true
				}
			}
			seen = append(seen, step)
		}
	}
	return false
}
