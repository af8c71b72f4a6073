// Package metrics holds the Prometheus collectors Clubhouse exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Clubhouse metrics.
type Registry struct {
	// RPCRequests counts Connect calls by procedure and result code.
	RPCRequests *prometheus.CounterVec

	// RPCDuration observes Connect call latency by procedure.
	RPCDuration *prometheus.HistogramVec

	// HTTPRequests counts plain HTTP requests by route pattern and status.
	HTTPRequests *prometheus.CounterVec

	// RSVPOutcomes counts RSVP submissions by final phase and message.
	RSVPOutcomes *prometheus.CounterVec

	// RateLimited counts requests rejected by the per-IP limiter.
	RateLimited prometheus.Counter

	// SummariesComputed counts ledger summaries served.
	SummariesComputed prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewRegistry creates every collector and registers it on a fresh registry
// along with the Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Registry{
		RPCRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubhouse_rpc_requests_total",
				Help: "Total number of Connect RPCs by procedure and code",
			},
			[]string{"procedure", "code"},
		),

		RPCDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clubhouse_rpc_duration_seconds",
				Help:    "Duration of Connect RPCs in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"procedure"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubhouse_http_requests_total",
				Help: "Total number of plain HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),

		RSVPOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubhouse_rsvp_outcomes_total",
				Help: "RSVP submissions by resulting phase and message",
			},
			[]string{"phase", "message"},
		),

		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clubhouse_rate_limited_total",
				Help: "Requests rejected by the per-IP rate limiter",
			},
		),

		SummariesComputed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clubhouse_ledger_summaries_total",
				Help: "Ledger summaries computed",
			},
		),

		gatherer: reg,
	}

	reg.MustRegister(
		m.RPCRequests,
		m.RPCDuration,
		m.HTTPRequests,
		m.RSVPOutcomes,
		m.RateLimited,
		m.SummariesComputed,
	)

	return m
}

// Gatherer exposes the registry to promhttp.
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.gatherer
}
