// Package metrics exposes assignment runs as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sherine-k/pickups/pkg/dispatch"
)

// Recorder records assignment batches
type Recorder struct {
	jobs     *prometheus.CounterVec
	batches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewRecorder registers the assignment metrics on reg.
// A nil registerer defaults to the global Prometheus registerer. If the
// collectors are already registered, the existing ones are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pickups_jobs_total",
		Help: "Jobs processed by assignment batches",
	}, []string{"outcome"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pickups_batches_total",
		Help: "Assignment batches by result",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pickups_batch_duration_seconds",
		Help:    "Time spent assigning one batch",
		Buckets: prometheus.DefBuckets,
	})

	var err error
	if jobs, err = register(reg, jobs); err != nil {
		return nil, err
	}
	if batches, err = register(reg, batches); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Recorder{jobs: jobs, batches: batches, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBatch counts the outcome of every assignment of a finished batch
func (r *Recorder) RecordBatch(assignments []dispatch.Assignment, elapsed time.Duration) {
	for _, a := range assignments {
		outcome := "assigned"
		if !a.IsAssigned() {
			outcome = "unassigned"
		}
		r.jobs.WithLabelValues(outcome).Inc()
	}
	r.batches.WithLabelValues("ok").Inc()
	r.duration.Observe(elapsed.Seconds())
}

// RecordFailure counts a batch rejected before assignment
func (r *Recorder) RecordFailure() {
	r.batches.WithLabelValues("rejected").Inc()
}
