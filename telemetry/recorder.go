package telemetry

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder bundles the executor's structured logger and Prometheus cost metrics.
type Recorder struct {
	service string
	logger  *slog.Logger

	registry *prometheus.Registry
	wall     *prometheus.HistogramVec
	wait     *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// Outcome labels recorded by RecordTask.
const (
	OutcomeOK               = "ok"
	OutcomeUserError        = "user_error"
	OutcomeDependencyError  = "dependency_error"
	OutcomeTimeout          = "timeout"
)

// NewRecorder builds a Recorder for service. The logger uses a JSON handler when
// TASKGRAPH_JSON_LOG=1 is set in the environment, and a human-readable text
// handler otherwise.
func NewRecorder(service string) *Recorder {
	var handler slog.Handler
	opts := &slog.HandlerOptions{}
	if os.Getenv("TASKGRAPH_JSON_LOG") == "1" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler).With("service", service)

	registry := prometheus.NewRegistry()
	wall := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskgraph",
		Subsystem: "executor",
		Name:      "task_wall_seconds",
		Help:      "Wall-clock time spent running a task's registered function.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskgraph",
		Subsystem: "executor",
		Name:      "task_wait_seconds",
		Help:      "Delay observed between the start of a task's round and its dispatch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskgraph",
		Subsystem: "executor",
		Name:      "task_outcomes_total",
		Help:      "Count of task outcomes by kind.",
	}, []string{"outcome"})
	registry.MustRegister(wall, wait, outcomes)

	return &Recorder{service: service, logger: logger, registry: registry, wall: wall, wait: wait, outcomes: outcomes}
}

// Logger returns the recorder's structured logger.
func (r *Recorder) Logger() *slog.Logger { return r.logger }

// Handler exposes the recorder's metrics for scraping. Serving it is the
// caller's choice; the recorder itself never starts a server.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordTask publishes one task's wall time, wait times, and outcome.
func (r *Recorder) RecordTask(taskID any, wall time.Duration, waits map[any]time.Duration, outcome string) {
	label := fmt.Sprintf("%v", taskID)
	r.wall.WithLabelValues(label).Observe(wall.Seconds())
	for _, w := range waits {
		r.wait.WithLabelValues(label).Observe(w.Seconds())
	}
	r.outcomes.WithLabelValues(outcome).Inc()
}

// RecordRespawn logs a worker respawn after a timeout-triggered kill.
func (r *Recorder) RecordRespawn(workerIndex int, attempt int) {
	r.logger.Warn("respawning worker after timeout kill", "worker", workerIndex, "attempt", attempt)
}
