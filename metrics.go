package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot_client",
			Name:      "writes_enqueued_total",
			Help:      "Remote writes accepted by the scheduler.",
		},
	)

	writesFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot_client",
			Name:      "writes_failed_total",
			Help:      "Remote writes that failed terminally and were queued for replay.",
		},
	)

	writesReplayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autolot_client",
			Name:      "writes_replayed_total",
			Help:      "Queued writes successfully replayed against the remote store.",
		},
	)
)
