// Package worker realizes the executor's OS-process isolation model: a registry
// of named functions that can be invoked from a re-executed subprocess, and the
// gob wire protocol used to send invocations to, and receive results from, that
// subprocess.
//
// A graph.Task.Fn is a FuncRef string rather than a Go closure because a Go
// function value cannot be gob-encoded across the process boundary a forcibly
// killable worker requires.
package worker
