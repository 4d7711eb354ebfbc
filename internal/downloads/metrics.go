package downloads

import "github.com/prometheus/client_golang/prometheus"

var downloadsCompleted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "modelsync",
		Subsystem: "downloads",
		Name:      "completed_total",
		Help:      "Download completed events observed",
	},
)

func init() {
	prometheus.MustRegister(downloadsCompleted)
}
