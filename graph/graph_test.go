package graph

import "testing"

func TestGraphInsertionOrderAndIndex(t *testing.T) {
	g := NewGraph()
	g.Add("b", Task{Fn: "noop"})
	g.Add("a", Task{Fn: "noop"})
	g.Add("b", Task{Fn: "noop", Cost: 2}) // re-add keeps original index

	ids := g.IDs()
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Fatalf("unexpected insertion order: %v", ids)
	}
	if g.Index("b") != 0 {
		t.Fatalf("re-adding task b should preserve its original index")
	}
	if g.Index("a") != 1 {
		t.Fatalf("a should have index 1, got %d", g.Index("a"))
	}

	task, ok := g.Get("b")
	if !ok || task.Cost != 2 {
		t.Fatalf("expected updated task definition for b, got %+v ok=%v", task, ok)
	}
}

func TestGraphIndexPanicsOnUnknownID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown task id")
		}
	}()
	NewGraph().Index("missing")
}
