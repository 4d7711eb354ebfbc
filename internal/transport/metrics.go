package transport

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelsync",
			Subsystem: "events",
			Name:      "ingested_total",
			Help:      "Normalized events forwarded to the registry or queue manager",
		},
		[]string{"topic", "kind"},
	)

	eventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelsync",
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped by the normalizer (unrecognized or invalid)",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(eventsIngested, eventsDropped)
}
