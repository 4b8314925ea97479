package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plandrift/internal/driftcheck"
)

// Scan outcomes
const (
	OutcomeDrift   = "drift"
	OutcomeNoDrift = "no_drift"
	OutcomeError   = "error"
)

// Recorder holds the plan analysis metrics on a private registry.
// A nil *Recorder records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	scans           *prometheus.CounterVec
	driftDetections *prometheus.CounterVec
	fallbacks       prometheus.Counter
	totalChanges    prometheus.Histogram
}

// New creates a Recorder and registers its collectors
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plandrift_scans_total",
			Help: "Plans analysed, by outcome",
		}, []string{"outcome"}),
		driftDetections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plandrift_drift_detections_total",
			Help: "Plans with drift, by risk level",
		}, []string{"risk_level"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "plandrift_analysis_fallbacks_total",
			Help: "Analyses that failed and were replaced by the fallback result",
		}),
		totalChanges: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "plandrift_plan_total_changes",
			Help:    "Total changes per analysed plan",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// ObserveResult records one completed analysis.
func (r *Recorder) ObserveResult(result *driftcheck.DriftResult) {
	if r == nil || result == nil {
		return
	}

	r.totalChanges.Observe(float64(result.TotalChanges))
	if result.DriftDetected {
		r.scans.WithLabelValues(OutcomeDrift).Inc()
		r.driftDetections.WithLabelValues(string(result.RiskLevel)).Inc()
		return
	}
	r.scans.WithLabelValues(OutcomeNoDrift).Inc()
}

// ObserveError records a scan that produced no result.
func (r *Recorder) ObserveError() {
	if r == nil {
		return
	}
	r.scans.WithLabelValues(OutcomeError).Inc()
}

// ObserveFallback records an analysis replaced by the fallback result.
func (r *Recorder) ObserveFallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
