package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for GraphQL request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sorare_requests_total",
		Help: "Total GraphQL requests by kind and outcome",
	}, []string{"kind", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sorare_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by kind",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"kind"})

	budgetRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sorare_budget_rejections_total",
		Help: "Total queries rejected by the complexity budget, by kind",
	}, []string{"kind"})
)
