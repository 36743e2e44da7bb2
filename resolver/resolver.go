package resolver

import (
	"fmt"

	"taskgraph/graph"
)

// ExpandArgs returns a new argument tree with every graph.Dependency leaf in args
// replaced by its resolved value, looked up in results. Tree shape is preserved:
// a map stays a map, a slice stays a slice of the same length.
//
// If any leaf fails to resolve, ExpandArgs returns a graph.DependencyError
// immediately; the caller (the executor) records it as the task's cell without
// dispatching to a worker.
func ExpandArgs(args graph.Args, results *graph.ResultTable) (graph.Args, error) {
	switch v := args.(type) {
	case graph.Dependency:
		return resolveDependency(v, results)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, sub := range v {
			resolved, err := ExpandArgs(sub, results)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, sub := range v {
			resolved, err := ExpandArgs(sub, results)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case graph.Tuple:
		out := make(graph.Tuple, len(v))
		for i, sub := range v {
			resolved, err := ExpandArgs(sub, results)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func resolveDependency(dep graph.Dependency, results *graph.ResultTable) (any, error) {
	cell := results.Get(dep.TaskID)
	if cell.Err != nil {
		return nil, graph.NewDependencyError(cell.Err)
	}
	if dep.Key == nil {
		return cell.Value, nil
	}
	return expandRecursively(cell.Value, dep.Key)
}

// expandRecursively applies key to value. A graph.Tuple key applies each selector
// in order, progressively indexing into value; any other key applies a single
// selector.
func expandRecursively(value any, key any) (any, error) {
	if tuple, ok := key.(graph.Tuple); ok {
		cur := value
		for _, selector := range tuple {
			next, err := selectOne(cur, selector)
			if err != nil {
				return nil, err
			}
			cur = next
		}
		return cur, nil
	}
	return selectOne(value, key)
}

func selectOne(value any, selector any) (any, error) {
	var selected any
	switch container := value.(type) {
	case map[string]any:
		k, ok := selector.(string)
		if !ok {
			return nil, fmt.Errorf("resolver: map selector must be a string, got %T", selector)
		}
		v, ok := container[k]
		if !ok {
			return nil, fmt.Errorf("resolver: key %q not found in mapping result", k)
		}
		selected = v
	case []any:
		idx, err := asIndex(selector)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(container) {
			return nil, fmt.Errorf("resolver: index %d out of range (len %d)", idx, len(container))
		}
		selected = container[idx]
	default:
		return nil, fmt.Errorf("resolver: cannot select %v into non-mapping, non-sequence value %T", selector, value)
	}

	if errVal, ok := selected.(*graph.Err); ok {
		return nil, graph.NewDependencyError(errVal)
	}
	return selected, nil
}

func asIndex(selector any) (int, error) {
	switch v := selector.(type) {
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("resolver: sequence selector must be an int, got %T", selector)
	}
}
