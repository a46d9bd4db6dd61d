package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	scansStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "scan",
			Name:      "sessions_started_total",
			Help:      "Number of scan sessions started.",
		},
	)
	scansCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "scan",
			Name:      "sessions_completed_total",
			Help:      "Number of scan sessions that ran to completion.",
		},
	)
	scansCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "scan",
			Name:      "sessions_cancelled_total",
			Help:      "Number of scan sessions cancelled by the caller.",
		},
	)
	projectsDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "scan",
			Name:      "projects_discovered_total",
			Help:      "Number of project discoveries emitted across all sessions.",
		},
	)
	scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "devscope",
			Subsystem: "scan",
			Name:      "session_duration_seconds",
			Help:      "Wall time of finished scan sessions.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	processStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "process",
			Name:      "starts_total",
			Help:      "Number of successful process spawns.",
		}, []string{"project"},
	)
	processFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "process",
			Name:      "failures_total",
			Help:      "Number of spawn failures or non-zero exits.",
		}, []string{"project"},
	)
	processStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devscope",
			Subsystem: "process",
			Name:      "stops_total",
			Help:      "Number of explicit stops.",
		}, []string{"project"},
	)
	runningProcesses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "devscope",
			Subsystem: "process",
			Name:      "running",
			Help:      "Current number of registered processes.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		scansStarted, scansCompleted, scansCancelled, projectsDiscovered, scanDuration,
		processStarts, processFailures, processStops, runningProcesses,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller wires the route and server.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncScanStarted() {
	if regOK.Load() {
		scansStarted.Inc()
	}
}
func IncScanCompleted() {
	if regOK.Load() {
		scansCompleted.Inc()
	}
}
func IncScanCancelled() {
	if regOK.Load() {
		scansCancelled.Inc()
	}
}
func IncProjectDiscovered() {
	if regOK.Load() {
		projectsDiscovered.Inc()
	}
}
func ObserveScanDuration(seconds float64) {
	if regOK.Load() {
		scanDuration.Observe(seconds)
	}
}
func IncProcessStart(projectID string) {
	if regOK.Load() {
		processStarts.WithLabelValues(projectID).Inc()
	}
}
func IncProcessFailure(projectID string) {
	if regOK.Load() {
		processFailures.WithLabelValues(projectID).Inc()
	}
}
func IncProcessStop(projectID string) {
	if regOK.Load() {
		processStops.WithLabelValues(projectID).Inc()
	}
}
func SetRunningProcesses(n int) {
	if regOK.Load() {
		runningProcesses.Set(float64(n))
	}
}
