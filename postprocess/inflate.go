package postprocess

import "taskgraph/graph"

// InflateResults rewrites any task identifier that is a graph.Tuple of exactly
// two scalar elements (a, b) into one level of nesting: keys grouped by a become
// an inner *graph.IDMap[V] keyed by b. Identifiers whose second element is
// itself a graph.Tuple are not further recursed — only one level of inflation
// occurs. Non-tuple and non-2-tuple identifiers pass through unchanged as a bare
// V, which makes the operation idempotent on already-inflated input.
//
// InflateResults is generic so it can reshape both the executor's flat
// graph.Cell result mapping and its parallel per-task executor.Costs mapping
// the same way, keeping a costs["stats"][2] lookup structurally aligned with
// the corresponding results["stats"][2] lookup.
//
// Both the outer and inner mappings are *graph.IDMap rather than literal Go
// maps, since outer/inner keys may themselves be graph.Tuple values, which
// cannot serve as native map keys in Go.
func InflateResults[V any](flat *graph.IDMap[V]) *graph.IDMap[any] {
	out := graph.NewIDMap[any]()

	flat.Range(func(id graph.TaskID, cell V) bool {
		tuple, ok := id.(graph.Tuple)
		if !ok || len(tuple) != 2 {
			out.Set(id, cell)
			return true
		}

		a, b := tuple[0], tuple[1]
		var inner *graph.IDMap[V]
		if existing, ok := out.Get(a); ok {
			inner, ok = existing.(*graph.IDMap[V])
			if !ok {
				inner = graph.NewIDMap[V]()
			}
		} else {
			inner = graph.NewIDMap[V]()
		}
		inner.Set(b, cell)
		out.Set(a, inner)
		return true
	})

	return out
}
