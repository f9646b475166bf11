package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are intentionally simple. queueDepth is only updated under the
// scheduler mutex, guaranteeing a single logical writer.
var (
	submissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "submissions_total",
			Help:      "Tasks accepted for execution.",
		},
	)

	coalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "coalesced_total",
			Help:      "Submissions that joined an existing task for the same key.",
		},
	)

	queueFullTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "queue_full_total",
			Help:      "Submissions rejected because the queue was at capacity.",
		},
	)

	retriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "retries_total",
			Help:      "Task attempts beyond the first.",
		},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Task execution latency per attempt.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "autolot",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Tasks currently queued (excludes in-flight).",
		},
	)
)
