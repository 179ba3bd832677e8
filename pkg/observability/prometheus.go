package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics served by the local API
type Collector struct {
	registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of dispatched actions",
		},
		[]string{"module", "action", "status"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action dispatch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"module", "action"},
	)

	registry.MustRegister(requests, duration)

	return &Collector{
		registry: registry,
		Requests: requests,
		Duration: duration,
	}
}

// RecordDispatch implements Recorder
func (c *Collector) RecordDispatch(_ context.Context, d Dispatch) {
	c.Requests.WithLabelValues(d.Module, d.Action, strconv.Itoa(d.Status)).Inc()
	c.Duration.WithLabelValues(d.Module, d.Action).Observe(d.Duration.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
