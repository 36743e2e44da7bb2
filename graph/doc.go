// Package graph defines the data model shared by every component of the task-graph
// engine: task identifiers, task definitions, dependency references, and result
// cells that carry errors as ordinary values instead of panics.
package graph
