package graph

import (
	"fmt"
	"reflect"

	pkgerrors "github.com/pkg/errors"
)

// Err is a tagged wrapper around a captured error. It flows through the graph as
// an ordinary value rather than as a Go panic or unwound stack, so that a single
// failing task never aborts the rest of the run.
type Err struct {
	typeName string
	cause    error
}

// NewErr wraps cause, capturing a stack trace at the point of first wrapping (via
// github.com/pkg/errors) and keeping it on the wrapped cause. Nothing in this
// module prints that trace.
func NewErr(typeName string, cause error) *Err {
	if cause == nil {
		return nil
	}
	if _, ok := cause.(stackTracer); !ok {
		cause = pkgerrors.WithStack(cause)
	}
	return &Err{typeName: typeName, cause: cause}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// TypeName returns the diagnostic kind recorded for this error (e.g. "UserError",
// "DependencyError", "TimeoutError").
func (e *Err) TypeName() string {
	if e == nil {
		return ""
	}
	return e.typeName
}

// Unwrap exposes the captured cause for errors.Is / errors.As.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Error implements the error interface.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.typeName, e.cause.Error())
}

const (
	typeUserError       = "UserError"
	typeDependencyError = "DependencyError"
	typeTimeoutError    = "TimeoutError"
)

// NewUserError wraps an error returned (or panicked) by a registered task function.
func NewUserError(cause error) *Err { return NewErr(typeUserError, cause) }

// NewTimeoutError reports that the wait for a task's result exceeded the configured
// timeout.
func NewTimeoutError(taskID TaskID) *Err {
	return NewErr(typeTimeoutError, fmt.Errorf("task %v timed out", taskID))
}

// NewDependencyError builds the distinguished error raised by the dependency
// resolver when an upstream cell it depends on (directly, or through a mapping or
// sequence selector) is itself an error.
func NewDependencyError(upstream *Err) *Err {
	if upstream == nil {
		return nil
	}
	msg := fmt.Sprintf("A dependency raised %s with the message %q", upstream.TypeName(), upstream.Unwrap().Error())
	return NewErr(typeDependencyError, fmt.Errorf("%s", msg))
}

// IsTimeout reports whether err (as produced by this package) is a TimeoutError.
func IsTimeout(e *Err) bool { return e != nil && e.typeName == typeTimeoutError }

// Cell is a result cell: Option[Result] rather than a one-tuple wrapping device.
// Present distinguishes "not yet produced" from a produced nil/zero Value.
type Cell struct {
	Present bool
	Value   any
	Err     *Err
}

// ValueCell constructs a present, successful cell.
func ValueCell(v any) Cell { return Cell{Present: true, Value: v} }

// ErrCell constructs a present, failed cell.
func ErrCell(e *Err) Cell { return Cell{Present: true, Err: e} }

// DeepEqual reports whether two values are structurally equivalent. It recurses
// over maps, slices, and Tuples. On leaves it uses the leaf's own Equal(any) bool
// method when it has one and == otherwise, recovering from a panicking comparison
// by treating such leaves as unequal rather than aborting the caller (the
// scheduler's multiplexing pass).
func DeepEqual(a, b any) (equal bool) {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, aval := range av {
			bval, ok := bv[k]
			if !ok || !DeepEqual(aval, bval) {
				return false
			}
		}
		return true
	case []any:
		return deepEqualSlice(av, b)
	case Tuple:
		return deepEqualSlice([]any(av), b)
	case Dependency:
		bv, ok := b.(Dependency)
		if !ok {
			return false
		}
		return DeepEqual(av.TaskID, bv.TaskID) && DeepEqual(av.Key, bv.Key) && av.Multiplier == bv.Multiplier
	default:
		return safeEqual(a, b)
	}
}

func deepEqualSlice(av []any, b any) bool {
	var bv []any
	switch t := b.(type) {
	case []any:
		bv = t
	case Tuple:
		bv = []any(t)
	default:
		return false
	}
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if !DeepEqual(av[i], bv[i]) {
			return false
		}
	}
	return true
}

// safeEqual recovers from a panicking == (e.g. comparing incomparable struct types
// via an any-typed interface) and treats that case as "not equal" rather than
// letting the panic escape.
func safeEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	if eq, ok := a.(interface{ Equal(any) bool }); ok {
		return eq.Equal(b)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return a == b
}
