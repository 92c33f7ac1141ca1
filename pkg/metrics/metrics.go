package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TicketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_issued_total",
		Help: "Tickets persisted with a freshly generated code.",
	})

	TicketsUsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_used_total",
		Help: "Tickets transitioned from unused to used.",
	})

	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "code_collisions_total",
		Help: "Generated ticket codes rejected because they were already taken.",
	})

	SalesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Sales stored together with their details.",
	})
)
