package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResizesTotal counts resize batches by outcome.
	ResizesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bannerpost_resizes_total",
			Help: "The total number of resize batches, by outcome.",
		},
		[]string{"outcome"},
	)

	// ResizeDuration is a histogram of resize batch durations.
	ResizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bannerpost_resize_duration_seconds",
			Help:    "A histogram of resize batch durations.",
			Buckets: prometheus.LinearBuckets(0.05, 0.05, 10),
		},
	)

	// PublishesTotal counts publish attempts by outcome.
	PublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bannerpost_publishes_total",
			Help: "The total number of publish attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	// AuthFlowsTotal counts authorization flow transitions by outcome.
	AuthFlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bannerpost_auth_flows_total",
			Help: "The total number of authorization flow events, by outcome.",
		},
		[]string{"outcome"},
	)
)
