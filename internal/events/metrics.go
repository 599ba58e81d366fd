package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	received = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "confstore_events_received_total",
			Help: "Number of replication events received, by event.",
		},
		[]string{"event"},
	)

	dropped = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "confstore_events_dropped_total",
			Help: "Number of replication events dropped, by event and reason.",
		},
		[]string{"event", "reason"},
	)
)
