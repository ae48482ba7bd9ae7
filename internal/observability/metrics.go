package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an analysis run.
type Metrics struct {
	EntriesRead        prometheus.Counter
	SamplesExtracted   prometheus.Counter
	MissingFieldErrors prometheus.Counter
	UnrelatedSkipped   prometheus.Counter
	InvalidValues      prometheus.Counter
	SamplesPublished   prometheus.Counter
	PipelineRunning    prometheus.Gauge

	RunDuration prometheus.Histogram

	// Fit results of the last completed run.
	FitSlope     prometheus.Gauge
	FitIntercept prometheus.Gauge
	FitAlpha     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.EntriesRead,
		m.SamplesExtracted,
		m.MissingFieldErrors,
		m.UnrelatedSkipped,
		m.InvalidValues,
		m.SamplesPublished,
		m.PipelineRunning,
		m.RunDuration,
		m.FitSlope,
		m.FitIntercept,
		m.FitAlpha,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EntriesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "har_entries_read_total",
			Help:      "Total archive entries read from the capture.",
		}),
		SamplesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "samples_extracted_total",
			Help:      "Total sensor samples extracted from response bodies.",
		}),
		MissingFieldErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "missing_field_errors_total",
			Help:      "Sensor responses dropped because a field was missing.",
		}),
		UnrelatedSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "unrelated_entries_skipped_total",
			Help:      "Entries skipped because the body was not a sensor response.",
		}),
		InvalidValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "invalid_samples_total",
			Help:      "Samples kept with at least one non-numeric value.",
		}),
		SamplesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resistivity_etl",
			Name:      "samples_published_total",
			Help:      "Samples written to the Kafka sink.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resistivity_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "resistivity_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-fit run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FitSlope: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resistivity_etl",
			Name:      "fit_slope_ohm_metre_per_kelvin",
			Help:      "Slope of the last resistivity fit.",
		}),
		FitIntercept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resistivity_etl",
			Name:      "fit_intercept_ohm_metre",
			Help:      "Intercept of the last resistivity fit.",
		}),
		FitAlpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resistivity_etl",
			Name:      "fit_alpha_per_kelvin",
			Help:      "Temperature coefficient of resistivity from the last fit.",
		}),
	}
}
