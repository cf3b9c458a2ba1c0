// Package metrics exposes Prometheus instrumentation for the billing
// engine's HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry            *prometheus.Registry
	calculationsTotal   prometheus.Counter
	calculationsFailed  prometheus.Counter
	simulationsTotal    prometheus.Counter
	ruleWarningsTotal   prometheus.Counter
	calculationDuration prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		calculationsTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "billing_calculations_total",
			Help: "Total number of invoice calculations",
		}),
		calculationsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "billing_calculations_failed_total",
			Help: "Total number of invoice calculations rejected by validation",
		}),
		simulationsTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "billing_simulations_total",
			Help: "Total number of rule simulations",
		}),
		ruleWarningsTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "billing_rule_warnings_total",
			Help: "Total number of malformed-rule warnings raised during evaluation",
		}),
		calculationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "billing_calculation_duration_seconds",
			Help:    "Time taken to calculate an invoice",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) RecordCalculation(duration time.Duration, warnings int, failed bool) {
	if failed {
		c.calculationsFailed.Inc()
	} else {
		c.calculationsTotal.Inc()
	}
	c.ruleWarningsTotal.Add(float64(warnings))
	c.calculationDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordSimulation() {
	c.simulationsTotal.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
