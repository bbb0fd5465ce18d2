package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Artifact resolution Prometheus metrics.
var (
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mvnquery",
			Name:      "downloads_total",
			Help:      "Total number of artifact download resolutions",
		},
		[]string{"repository", "outcome"},
	)

	LatestResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mvnquery",
			Name:      "latest_resolutions_total",
			Help:      "Total number of LATEST version resolutions",
		},
		[]string{"outcome"},
	)
)

var resolutionMetricsRegistered bool

// RegisterResolutionMetrics registers download and LATEST metrics. Must be called once from main.
func RegisterResolutionMetrics() {
	if resolutionMetricsRegistered {
		return
	}
	prometheus.MustRegister(DownloadsTotal)
	prometheus.MustRegister(LatestResolutionsTotal)
	resolutionMetricsRegistered = true
}
