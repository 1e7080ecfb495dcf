// Package metrics exports boundary invocation counters to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"suimu/internal/boundary"
)

const namespace = "suimu"

// Recorder is a boundary.Observer backed by its own registry, so tests and
// multiple daemons in one process never collide on the default registerer.
type Recorder struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	records     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewRecorder creates and registers the invocation metrics plus the Go and
// process collectors.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "boundary",
			Name:      "invocations_total",
			Help:      "Boundary commands served, by command and outcome (ok or error kind).",
		}, []string{"command", "outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "records_total",
			Help:      "Records returned by successful CSV loads.",
		}, []string{"command"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "rows_skipped_total",
			Help:      "Data rows dropped while parsing, by skip kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "boundary",
			Name:      "invocation_duration_seconds",
			Help:      "Time spent serving a boundary command.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"command"}),
	}
	for _, c := range []prometheus.Collector{
		r.invocations,
		r.records,
		r.skipped,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveInvocation implements boundary.Observer.
func (r *Recorder) ObserveInvocation(_ context.Context, inv boundary.Invocation) {
	outcome := "ok"
	if !inv.OK {
		outcome = string(inv.Kind)
	}
	r.invocations.WithLabelValues(inv.Command, outcome).Inc()
	r.duration.WithLabelValues(inv.Command).Observe(inv.Duration.Seconds())
	if inv.OK {
		r.records.WithLabelValues(inv.Command).Add(float64(inv.Records))
	}
	for _, row := range inv.Skipped {
		r.skipped.WithLabelValues(string(row.Kind)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
