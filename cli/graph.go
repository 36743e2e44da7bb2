package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"taskgraph/graph"
)

// graphFile is the on-disk JSON shape: a flat map from task identifier to task
// definition. Dependency references are embedded inside a task's "args" as
// objects carrying a "$dep" key (see decodeArgs).
type graphFile struct {
	Tasks map[string]taskFile `json:"tasks"`
}

type taskFile struct {
	Func string  `json:"func"`
	Cost float64 `json:"cost"`
	Args any     `json:"args"`
}

// LoadGraphFromFile reads and parses the task graph definition at path.
//
// The loader is deterministic: task identifiers are a JSON object's keys,
// which Go's encoding/json (and map iteration generally) do not visit in a
// stable order, so LoadGraphFromFile sorts them before calling graph.Add —
// preserving the reproducible insertion-order tie-breaking the scheduler
// relies on regardless of how the source file lists its tasks.
//
// Unknown fields are rejected and trailing data after the top-level JSON
// value is an error, so a malformed file fails loudly rather than silently
// diverging from what a reader would expect it to mean.
func LoadGraphFromFile(path string) (*graph.Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read graph: %w", err)
	}

	var gf graphFile
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&gf); err != nil {
		return nil, fmt.Errorf("cli: parse graph json: %w", err)
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("cli: parse graph json: trailing data after top-level value")
		}
		return nil, fmt.Errorf("cli: parse graph json: %w", err)
	}
	if len(gf.Tasks) == 0 {
		return nil, fmt.Errorf("cli: parse graph json: no tasks")
	}

	ids := make([]string, 0, len(gf.Tasks))
	for id := range gf.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := graph.NewGraph()
	for _, id := range ids {
		tf := gf.Tasks[id]
		if tf.Func == "" {
			return nil, fmt.Errorf("cli: task %q: func is required", id)
		}
		args, err := decodeArgs(tf.Args)
		if err != nil {
			return nil, fmt.Errorf("cli: task %q: %w", id, err)
		}
		g.Add(id, graph.Task{Fn: graph.FuncRef(tf.Func), Args: args, Cost: tf.Cost})
	}
	return g, nil
}

// decodeArgs walks a decoded JSON value, turning any object carrying a
// "$dep" key into a graph.Dependency and otherwise preserving shape: a JSON
// object becomes map[string]any, a JSON array becomes []any.
func decodeArgs(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if raw, ok := val["$dep"]; ok {
			return decodeDependency(raw, val)
		}
		out := make(map[string]any, len(val))
		for k, sub := range val {
			decoded, err := decodeArgs(sub)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			decoded, err := decodeArgs(sub)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	default:
		return val, nil
	}
}

func decodeDependency(taskID any, obj map[string]any) (any, error) {
	var key any
	if raw, ok := obj["key"]; ok {
		decodedKey, err := decodeKey(raw)
		if err != nil {
			return nil, err
		}
		key = decodedKey
	}

	multiplier := 1
	if raw, ok := obj["multiplier"]; ok {
		n, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("$dep.multiplier must be a number, got %T", raw)
		}
		multiplier = int(n)
	}

	return graph.NewDependency(taskID, key, multiplier), nil
}

// decodeKey decodes a $dep "key" value. A JSON array is a Tuple of selectors
// applied in turn; anything else is a single selector. Numeric selectors
// decode as int, matching what the resolver expects for sequence indices.
func decodeKey(v any) (any, error) {
	switch val := v.(type) {
	case []any:
		tuple := make(graph.Tuple, len(val))
		for i, sub := range val {
			decoded, err := decodeKey(sub)
			if err != nil {
				return nil, err
			}
			tuple[i] = decoded
		}
		return tuple, nil
	case float64:
		return int(val), nil
	default:
		return val, nil
	}
}
