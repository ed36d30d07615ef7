package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotline_ai_requests_total",
			Help: "Analysis operations by outcome (ok or fallback)",
		},
		[]string{"operation", "outcome"},
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotline_ai_request_duration_seconds",
			Help:    "Upstream completion latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"operation"},
	)

	AICache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotline_ai_cache_total",
			Help: "Completion cache lookups by result",
		},
		[]string{"result"},
	)

	TicketsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotline_tickets_created_total",
			Help: "Tickets created by category",
		},
		[]string{"category"},
	)
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

var registerOnce sync.Once

// Register adds the collectors to the default registry; safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AIRequests, AIRequestDuration, AICache, TicketsCreated)
	})
}
