package worker

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// RunChild is the subprocess entry point: it reads Invocation values from stdin,
// looks up the requested function in registry, runs it, recovers from a panic by
// converting it into a failed Result (matching the teacher-style
// defer/recover convention used elsewhere in this module), and writes one Result
// per Invocation to stdout. It returns when stdin is closed.
func RunChild(registry *Registry) error {
	return runChild(registry, os.Stdin, os.Stdout)
}

func runChild(registry *Registry, in io.Reader, out io.Writer) error {
	dec := gob.NewDecoder(in)
	enc := gob.NewEncoder(out)

	for {
		var inv Invocation
		if err := dec.Decode(&inv); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		result := invoke(registry, inv)
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
}

func invoke(registry *Registry, inv Invocation) (result Result) {
	result.Slot = inv.Slot

	fn, ok := registry.Lookup(inv.FuncRef)
	if !ok {
		result.Err = (&ErrUnregisteredFunc{Ref: inv.FuncRef}).Error()
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Value = nil
			result.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	value, err := fn(inv.Args)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	result.Value = value
	return result
}
