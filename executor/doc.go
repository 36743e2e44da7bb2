// Package executor dispatches a scheduler.Schedule to a pool of OS-process
// workers, resolving dependency arguments, enforcing per-task timeouts with
// kill-and-respawn, and collecting results (and optionally cost telemetry) into
// a flat per-task result mapping.
package executor
