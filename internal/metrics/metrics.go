// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "katalog"

// Metrics holds all Prometheus metrics for the catalog service.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	AuthDenials         *prometheus.CounterVec
	EventPublishFailure *prometheus.CounterVec
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthDenials: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_denials_total",
				Help:      "Requests rejected by the authorization pipeline",
			},
			[]string{"stage", "code"}, // stage=api_key/token/role
		),
		EventPublishFailure: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publish_failures_total",
				Help:      "Product events that could not be delivered",
			},
			[]string{"type"},
		),
	}
}
