package executor

import (
	"context"
	"testing"
	"time"

	"taskgraph/graph"
	"taskgraph/scheduler"
)

func TestExecuteTaskListsLinearChain(t *testing.T) {
	g := graph.NewGraph()
	g.Add(0, graph.Task{Fn: "increment", Args: 0, Cost: 1})
	g.Add(1, graph.Task{Fn: "increment", Args: graph.Dependency{TaskID: 0}, Cost: 1})
	g.Add(2, graph.Task{Fn: "double", Args: graph.Dependency{TaskID: 1}, Cost: 1})

	sched, err := scheduler.EarliestFinishTime(g, 2)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := ExecuteTaskLists(ctx, sched)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := map[graph.TaskID]int{0: 1, 1: 2, 2: 4}
	for id, w := range want {
		cell, ok := results.Get(id)
		if !ok || cell.Err != nil {
			t.Fatalf("task %v: missing or errored cell: %+v", id, cell)
		}
		if cell.Value != w {
			t.Fatalf("task %v: got %v want %v", id, cell.Value, w)
		}
	}
}

func TestExecuteTaskListsErrorPropagation(t *testing.T) {
	g := graph.NewGraph()
	g.Add(0, graph.Task{Fn: "fail", Cost: 1})
	g.Add(1, graph.Task{Fn: "increment", Args: graph.Dependency{TaskID: 0}, Cost: 1})

	sched, err := scheduler.EarliestFinishTime(g, 1)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := ExecuteTaskLists(ctx, sched)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	c0, _ := results.Get(0)
	if c0.Err == nil || c0.Err.TypeName() != "UserError" {
		t.Fatalf("task 0 should have a UserError cell, got %+v", c0)
	}

	c1, _ := results.Get(1)
	if c1.Err == nil || c1.Err.TypeName() != "DependencyError" {
		t.Fatalf("task 1 should have a DependencyError cell, got %+v", c1)
	}
}

func TestExecuteTaskListsInflatesCostsAlongsideResults(t *testing.T) {
	g := graph.NewGraph()
	g.Add(graph.Tuple{"stats", 0}, graph.Task{Fn: "increment", Args: 1, Cost: 1})
	g.Add(graph.Tuple{"stats", 1}, graph.Task{Fn: "increment", Args: 2, Cost: 1})

	sched, err := scheduler.EarliestFinishTime(g, 2)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := ExecuteTaskLists(ctx, sched, WithCosts(true), WithInflate(true))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	statsCell, ok := results.Get("stats")
	if !ok {
		t.Fatalf("expected results to nest under \"stats\"")
	}
	stats, ok := statsCell.Value.(*graph.IDMap[graph.Cell])
	if !ok {
		t.Fatalf("expected \"stats\" to inflate into a nested IDMap, got %T", statsCell.Value)
	}
	c0, _ := stats.Get(0)
	c1, _ := stats.Get(1)
	if c0.Value != 2 || c1.Value != 3 {
		t.Fatalf("got stats[0]=%+v stats[1]=%+v", c0, c1)
	}

	costsCell, ok := results.Get(CostsKey)
	if !ok {
		t.Fatalf("expected a costs entry")
	}
	costsOuter, ok := costsCell.Value.(*graph.IDMap[any])
	if !ok {
		t.Fatalf("expected costs to be an inflated *graph.IDMap[any], got %T", costsCell.Value)
	}
	statsCosts, ok := costsOuter.Get("stats")
	if !ok {
		t.Fatalf("expected costs to nest under \"stats\" the same way results do")
	}
	nested, ok := statsCosts.(*graph.IDMap[Costs])
	if !ok {
		t.Fatalf("expected costs[\"stats\"] to be a nested *graph.IDMap[Costs], got %T", statsCosts)
	}
	if nested.Len() != 2 {
		t.Fatalf("expected two nested cost entries, got %d", nested.Len())
	}
}

func TestExecuteTaskListsTimeoutIsolatesFaultyTask(t *testing.T) {
	g := graph.NewGraph()
	g.Add("slow", graph.Task{Fn: "sleep", Args: 500, Cost: 1})
	g.Add("independent", graph.Task{Fn: "increment", Args: 1, Cost: 1})

	sched, err := scheduler.EarliestFinishTime(g, 2)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := ExecuteTaskLists(ctx, sched, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	slow, _ := results.Get("slow")
	if slow.Err == nil || !graph.IsTimeout(slow.Err) {
		t.Fatalf("expected slow task to time out, got %+v", slow)
	}

	indep, _ := results.Get("independent")
	if indep.Err != nil || indep.Value != 2 {
		t.Fatalf("independent task should be unaffected by the timeout, got %+v", indep)
	}
}
