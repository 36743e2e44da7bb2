// Package postprocess turns the executor's raw per-worker result slices into the
// caller-facing mapping from task identifier to result cell, optionally
// inflating tuple-keyed identifiers into one level of nested maps.
package postprocess
