// Package metrics provides Prometheus metrics for calculations.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khanglvm/geocalc/internal/shapes"
)

const namespace = "geocalc"

// Collector holds the calculator's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	CalculationsTotal   *prometheus.CounterVec
	RejectionsTotal     *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec
	LogFailuresTotal    prometheus.Counter
	StatsQueriesTotal   prometheus.Counter
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of successful calculations",
			},
			[]string{"shape", "dimension"},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Total number of rejected inputs",
			},
			[]string{"shape", "reason"},
		),
		CalculationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Calculation duration in seconds",
				Buckets:   []float64{1e-7, 1e-6, 1e-5, 1e-4, 1e-3, 1e-2},
			},
			[]string{"shape"},
		),
		LogFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_failures_total",
				Help:      "Total number of calculations that could not be recorded",
			},
		),
		StatsQueriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_queries_total",
				Help:      "Total number of statistics queries",
			},
		),
	}

	c.registry.MustRegister(
		c.CalculationsTotal,
		c.RejectionsTotal,
		c.CalculationDuration,
		c.LogFailuresTotal,
		c.StatsQueriesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCalculation records a successful calculation.
func (c *Collector) ObserveCalculation(res shapes.Result, took time.Duration) {
	if c == nil {
		return
	}
	c.CalculationsTotal.WithLabelValues(res.Kind.String(), res.Dimension.String()).Inc()
	c.CalculationDuration.WithLabelValues(res.Kind.String()).Observe(took.Seconds())
}

// ObserveRejection records a rejected input.
func (c *Collector) ObserveRejection(kind shapes.Kind, err error) {
	if c == nil {
		return
	}
	c.RejectionsTotal.WithLabelValues(kind.String(), Reason(err)).Inc()
}

// ObserveLogFailure records a calculation that was not stored.
func (c *Collector) ObserveLogFailure() {
	if c == nil {
		return
	}
	c.LogFailuresTotal.Inc()
}

// ObserveStatsQuery records a statistics query.
func (c *Collector) ObserveStatsQuery() {
	if c == nil {
		return
	}
	c.StatsQueriesTotal.Inc()
}

// Reason maps a compute error to a metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, shapes.ErrInvalidDimension):
		return "invalid_dimension"
	case errors.Is(err, shapes.ErrDegenerateShape):
		return "degenerate_shape"
	default:
		return "other"
	}
}
