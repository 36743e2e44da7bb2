package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskgraph/executor"
	"taskgraph/graph"
	"taskgraph/scheduler"
	"taskgraph/telemetry"
)

// CLIResult is the outcome of a single end-to-end Execute call.
type CLIResult struct {
	ExitCode int
	Output   []byte
}

// Execute schedules and runs inv's graph to completion, then renders the
// result table as JSON. A failed task is reflected in the rendered output
// (each cell reports its own error) and yields ExitGraphFailure; a failure to
// schedule or execute the run at all yields ExitSchedulingError or
// ExitInternalError respectively, with no output produced.
func Execute(ctx context.Context, inv *Invocation) (CLIResult, error) {
	res := CLIResult{ExitCode: ExitInternalError}

	rec := telemetry.NewRecorder("taskgraph")
	log := rec.Logger().With("run_id", uuid.NewString())
	log.Info("run started", "graph", inv.GraphPath, "workers", inv.Workers, "timeout", inv.Timeout)

	g, err := LoadGraphFromFile(inv.GraphPath)
	if err != nil {
		log.Error("graph load failed", "error", err)
		res.ExitCode = ExitGraphFailure
		return res, err
	}

	workers := inv.Workers
	if workers < 1 {
		workers = 1
	}

	var schedOpts []scheduler.Option
	if inv.Timeout > 0 {
		schedOpts = append(schedOpts, scheduler.WithTimeout(inv.Timeout))
	}
	if len(inv.Outputs) > 0 {
		ids := make([]graph.TaskID, len(inv.Outputs))
		for i, o := range inv.Outputs {
			ids[i] = o
		}
		schedOpts = append(schedOpts, scheduler.WithOutputTasks(ids...))
	}

	sched, err := scheduler.EarliestFinishTime(g, workers, schedOpts...)
	if err != nil {
		log.Error("scheduling failed", "error", err)
		res.ExitCode = ExitSchedulingError
		return res, err
	}

	execOpts := []executor.Option{
		executor.WithWorkers(workers),
		executor.WithFuncRegistry(DefaultRegistry()),
		executor.WithTelemetry(rec),
	}
	if inv.Timeout > 0 {
		execOpts = append(execOpts, executor.WithTimeout(inv.Timeout))
	}
	if inv.Costs {
		execOpts = append(execOpts, executor.WithCosts(true))
	}
	if inv.Inflate {
		execOpts = append(execOpts, executor.WithInflate(true))
	}

	flat, err := executor.ExecuteTaskLists(ctx, sched, execOpts...)
	if err != nil {
		log.Error("execution failed", "error", err)
		res.ExitCode = ExitInternalError
		return res, err
	}

	rendered := flattenForJSON(flat)

	b, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		log.Error("result rendering failed", "error", err)
		res.ExitCode = ExitInternalError
		return res, fmt.Errorf("cli: marshal results: %w", err)
	}
	res.Output = b

	if hasErrorCell(flat) {
		log.Warn("run completed with task failures")
		res.ExitCode = ExitGraphFailure
		return res, nil
	}
	log.Info("run completed")
	res.ExitCode = ExitSuccess
	return res, nil
}

// flattenForJSON converts the IDMap-based result shapes into plain
// map[string]any/[]any/scalar values that encoding/json already knows how to
// render, since json.Marshal has no notion of graph.IDMap or graph.Cell.
func flattenForJSON(v any) any {
	switch val := v.(type) {
	case *graph.IDMap[graph.Cell]:
		out := make(map[string]any, val.Len())
		val.Range(func(id graph.TaskID, c graph.Cell) bool {
			out[fmt.Sprintf("%v", id)] = cellToJSON(c)
			return true
		})
		return out
	case *graph.IDMap[any]:
		out := make(map[string]any, val.Len())
		val.Range(func(id graph.TaskID, inner any) bool {
			out[fmt.Sprintf("%v", id)] = flattenForJSON(inner)
			return true
		})
		return out
	case *graph.IDMap[executor.Costs]:
		out := make(map[string]any, val.Len())
		val.Range(func(id graph.TaskID, c executor.Costs) bool {
			out[fmt.Sprintf("%v", id)] = costToJSON(c)
			return true
		})
		return out
	case executor.Costs:
		return costToJSON(val)
	case graph.Cell:
		return cellToJSON(val)
	default:
		return val
	}
}

func costToJSON(c executor.Costs) map[string]any {
	waits := make(map[string]float64, len(c.Waits))
	for k, w := range c.Waits {
		waits[fmt.Sprintf("%v", k)] = w.Seconds()
	}
	return map[string]any{
		"wall_seconds": c.Wall.Seconds(),
		"waits":        waits,
	}
}

func cellToJSON(c graph.Cell) any {
	if c.Err != nil {
		return map[string]any{"error": c.Err.Error(), "type": c.Err.TypeName()}
	}
	if !c.Present {
		return nil
	}
	return flattenForJSON(c.Value)
}

// hasErrorCell reports whether flat (inflated or not) carries any failed task
// cell. Inflation only ever nests one level deep, so one level of recursion
// into a grouped *graph.IDMap[graph.Cell] value is enough to see every cell.
func hasErrorCell(flat *graph.IDMap[graph.Cell]) bool {
	failed := false
	flat.Range(func(id graph.TaskID, c graph.Cell) bool {
		if id == executor.CostsKey {
			return true
		}
		if c.Err != nil {
			failed = true
			return false
		}
		if inner, ok := c.Value.(*graph.IDMap[graph.Cell]); ok {
			inner.Range(func(_ graph.TaskID, ic graph.Cell) bool {
				if ic.Err != nil {
					failed = true
					return false
				}
				return true
			})
			if failed {
				return false
			}
		}
		return true
	})
	return failed
}
