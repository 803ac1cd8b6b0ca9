package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lynx",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI backend requests",
	}, []string{"provider", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lynx",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI backend requests",
	}, []string{"provider", "operation"})
)
