package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	RowsIngested       prometheus.Counter
	EventsAccepted     prometheus.Counter
	DedupeSkips        prometheus.Counter
	ValidationFailures prometheus.Counter
	LockContention     prometheus.Counter
	CacheHits          *prometheus.CounterVec
	CacheMisses        prometheus.Counter
	ProcessingDuration prometheus.Histogram
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
