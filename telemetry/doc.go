// Package telemetry provides the executor's ambient observability: a
// structured log/slog logger and Prometheus histograms/counters for per-task
// wall-clock and wait-time cost telemetry.
package telemetry
