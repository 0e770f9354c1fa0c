package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fundradar"

// Metrics holds the scorecard run collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchFailure *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	rows         prometheus.Gauge
	fallbacks    prometheus.Counter
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastSuccess  prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fetches_total",
			Help:      "Price series fetch attempts by outcome (ok, failed).",
		}, []string{"outcome"}),
		fetchFailure: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fetch_failures_total",
			Help:      "Failed price series fetches by reason.",
		}, []string{"reason"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scorecard_dropped_total",
			Help:      "Funds dropped from the scorecard by reason.",
		}, []string{"reason"}),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scorecard_rows",
			Help:      "Rows emitted by the last scorecard run.",
		}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_fallbacks_total",
			Help:      "Discounts that were undefined and defaulted to 0.",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Scorecard runs by status (ok, error).",
		}, []string{"status"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full scorecard run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) ObserveFetches(ok int, failures map[string]int) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues("ok").Add(float64(ok))
	for reason, n := range failures {
		m.fetches.WithLabelValues("failed").Add(float64(n))
		m.fetchFailure.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) ObserveDropped(byReason map[string]int) {
	if m == nil {
		return
	}
	for reason, n := range byReason {
		m.dropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) ObserveRows(n, fallbacks int) {
	if m == nil {
		return
	}
	m.rows.Set(float64(n))
	m.fallbacks.Add(float64(fallbacks))
}

// ObserveRun records a finished run. err decides the status label.
func (m *Metrics) ObserveRun(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.runDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
	m.lastSuccess.SetToCurrentTime()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
