// Package metrics exposes Prometheus collectors for round activity.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements app.Recorder on top of a Prometheus registry.
type Recorder struct {
	registry    *prometheus.Registry
	started     *prometheus.CounterVec
	validations *prometheus.CounterVec
	completions *prometheus.CounterVec
	percentages *prometheus.HistogramVec
}

// NewRecorder registers the round collectors plus the Go and process
// collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		started: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "escape_room",
				Subsystem: "rounds",
				Name:      "started_total",
				Help:      "Round instances started.",
			},
			[]string{"round"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "escape_room",
				Subsystem: "rounds",
				Name:      "validations_total",
				Help:      "Scored validations by feedback tier.",
			},
			[]string{"round", "tier"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "escape_room",
				Subsystem: "rounds",
				Name:      "completions_total",
				Help:      "Round results handed to progression.",
			},
			[]string{"section"},
		),
		percentages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "escape_room",
				Subsystem: "rounds",
				Name:      "score_percentage",
				Help:      "Distribution of validated round percentages.",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"round"},
		),
	}
	reg.MustRegister(
		r.started, r.validations, r.completions, r.percentages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RoundStarted(roundID string) {
	r.started.WithLabelValues(roundID).Inc()
}

func (r *Recorder) RoundValidated(roundID, tierID string, percentage int) {
	r.validations.WithLabelValues(roundID, tierID).Inc()
	r.percentages.WithLabelValues(roundID).Observe(float64(percentage))
}

func (r *Recorder) RoundCompleted(_ string, section int) {
	r.completions.WithLabelValues(strconv.Itoa(section)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
