// Package scheduler partitions a weighted task graph across a fixed number of
// workers using an earliest-finish-time heuristic driven by cost-to-completion
// priorities.
package scheduler
