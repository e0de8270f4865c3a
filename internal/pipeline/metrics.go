package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline runs by terminal status.",
	}, []string{"status"})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "publish_failures_total",
		Help:      "Publish attempts that failed, by target.",
	}, []string{"target"})

	enqueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "enqueue_dropped_total",
		Help:      "Sessions rejected because the work queue was full.",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "queue_depth",
		Help:      "Sessions waiting in the work queue.",
	})
)
