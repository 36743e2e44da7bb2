package postprocess

import (
	"testing"

	"taskgraph/graph"
	"taskgraph/scheduler"
)

func TestCollectResultsWithIDs(t *testing.T) {
	taskLists := [][]scheduler.Step{{{Fn: "f"}, {Fn: "g"}}}
	taskIDs := [][]any{{"a", "b"}}
	raw := [][]graph.Cell{{graph.ValueCell(1), graph.ValueCell(2)}}

	got, err := CollectResults(taskLists, taskIDs, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := got.Get("a")
	b, _ := got.Get("b")
	if a.Value != 1 || b.Value != 2 {
		t.Fatalf("got a=%v b=%v", a, b)
	}
}

func TestCollectResultsMultiplexExpandsAliases(t *testing.T) {
	taskLists := [][]scheduler.Step{{{Fn: "f"}}}
	taskIDs := [][]any{{[]graph.TaskID{"a", "b"}}}
	raw := [][]graph.Cell{{graph.ValueCell(42)}}

	got, err := CollectResults(taskLists, taskIDs, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := got.Get("a")
	b, _ := got.Get("b")
	if a.Value != 42 || b.Value != 42 {
		t.Fatalf("expected both aliases to share the multiplexed cell, got a=%v b=%v", a, b)
	}
}

func TestCollectResultsSyntheticKeysWithoutIDs(t *testing.T) {
	taskLists := [][]scheduler.Step{{{Fn: "f", Args: 1}, {Fn: "g", Args: 2}}}
	raw := [][]graph.Cell{{graph.ValueCell(1), graph.ValueCell(2)}}

	got, err := CollectResults(taskLists, nil, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c0, _ := got.Get(graph.Tuple{0, 0})
	c1, _ := got.Get(graph.Tuple{0, 1})
	if c0.Value != 1 || c1.Value != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestCollectResultsRejectsMultiplexWithoutIDs(t *testing.T) {
	taskLists := [][]scheduler.Step{{{Fn: "const", Args: 7}, {Fn: "const", Args: 7}}}
	raw := [][]graph.Cell{{graph.ValueCell(7), graph.ValueCell(7)}}

	_, err := CollectResults(taskLists, nil, raw)
	if err != ErrMultiplexWithoutIDs {
		t.Fatalf("expected ErrMultiplexWithoutIDs, got %v", err)
	}
}

func TestInflateResultsOneLevel(t *testing.T) {
	flat := graph.NewIDMap[graph.Cell]()
	flat.Set(graph.Tuple{0, 0}, graph.ValueCell(4))
	flat.Set(graph.Tuple{0, 1}, graph.ValueCell(3))
	flat.Set(1, graph.ValueCell(6))

	got := InflateResults(flat)

	rawInner, _ := got.Get(0)
	inner, ok := rawInner.(*graph.IDMap[graph.Cell])
	if !ok {
		t.Fatalf("expected 0 to inflate into a nested IDMap, got %T", rawInner)
	}
	c0, _ := inner.Get(0)
	c1, _ := inner.Get(1)
	if c0.Value != 4 || c1.Value != 3 {
		t.Fatalf("got %v", inner)
	}

	rawScalar, _ := got.Get(1)
	if rawScalar.(graph.Cell).Value != 6 {
		t.Fatalf("expected 1 to pass through unchanged")
	}
}

func TestInflateResultsIsGenericOverValueType(t *testing.T) {
	type cost struct{ Seconds float64 }

	flat := graph.NewIDMap[cost]()
	flat.Set(graph.Tuple{"stats", 0}, cost{Seconds: 1})
	flat.Set(graph.Tuple{"stats", 1}, cost{Seconds: 2})

	got := InflateResults(flat)

	rawInner, _ := got.Get("stats")
	inner, ok := rawInner.(*graph.IDMap[cost])
	if !ok {
		t.Fatalf("expected \"stats\" to inflate into a nested IDMap[cost], got %T", rawInner)
	}
	c0, _ := inner.Get(0)
	c1, _ := inner.Get(1)
	if c0.Seconds != 1 || c1.Seconds != 2 {
		t.Fatalf("got %v", inner)
	}
}

func TestInflateResultsDoesNotRecurseSecondLevel(t *testing.T) {
	flat := graph.NewIDMap[graph.Cell]()
	flat.Set(graph.Tuple{0, graph.Tuple{0, 0}}, graph.ValueCell(4))
	flat.Set(graph.Tuple{0, graph.Tuple{0, 1}}, graph.ValueCell(3))
	flat.Set(1, graph.ValueCell(6))

	got := InflateResults(flat)

	rawInner, _ := got.Get(0)
	inner := rawInner.(*graph.IDMap[graph.Cell])
	if inner.Len() != 2 {
		t.Fatalf("expected exactly one level of inflation, got %d entries", inner.Len())
	}
}
