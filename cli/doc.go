// Package cli turns process arguments into a canonical Invocation and drives a
// single end-to-end run: load graph, schedule, execute, print results.
package cli
