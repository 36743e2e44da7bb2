// Package resolver expands a task's argument tree by replacing every
// graph.Dependency leaf with the concrete value it references in a
// graph.ResultTable.
package resolver
