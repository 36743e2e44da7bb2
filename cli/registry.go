package cli

import (
	"fmt"
	"strings"

	"taskgraph/worker"
)

// DefaultRegistry returns the built-in set of functions available to a graph
// loaded from JSON. It is rebuilt identically by every worker subprocess (see
// worker.RunChild), since a registered Go closure cannot itself cross the
// process boundary.
func DefaultRegistry() *worker.Registry {
	reg := worker.NewRegistry()

	reg.Register("identity", func(args any) (any, error) {
		return args, nil
	})

	reg.Register("sum", func(args any) (any, error) {
		items, ok := args.([]any)
		if !ok {
			return nil, fmt.Errorf("sum: expected a list argument, got %T", args)
		}
		total := 0.0
		for _, item := range items {
			n, err := toFloat(item)
			if err != nil {
				return nil, fmt.Errorf("sum: %w", err)
			}
			total += n
		}
		return total, nil
	})

	reg.Register("concat", func(args any) (any, error) {
		items, ok := args.([]any)
		if !ok {
			return nil, fmt.Errorf("concat: expected a list argument, got %T", args)
		}
		var b strings.Builder
		for _, item := range items {
			fmt.Fprintf(&b, "%v", item)
		}
		return b.String(), nil
	})

	reg.Register("fail", func(args any) (any, error) {
		return nil, fmt.Errorf("fail: task explicitly raised an error: %v", args)
	})

	return reg
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
