package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_rows_ingested_total",
			Help: "The total number of raw event rows received.",
		}),
		EventsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_events_accepted_total",
			Help: "The total number of events that passed validation and dedupe and mutated state.",
		}),
		DedupeSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_dedupe_skips_total",
			Help: "The total number of replayed rows answered from a stored outcome.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_validation_failures_total",
			Help: "The total number of rows rejected by validation or rule checks.",
		}),
		LockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_lock_contention_total",
			Help: "The total number of invocations that failed to acquire the per-match lock.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_cache_hits_total",
			Help: "The total number of cache hits, labeled by tier.",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_cache_misses_total",
			Help: "The total number of cache misses across all tiers.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchday_event_processing_duration_seconds",
			Help:    "The duration of individual event processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_notifications_sent_total",
			Help: "The total number of ticker notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_notifications_failed_total",
			Help: "The total number of ticker notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchday_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RowsIngested,
		s.EventsAccepted,
		s.DedupeSkips,
		s.ValidationFailures,
		s.LockContention,
		s.CacheHits,
		s.CacheMisses,
		s.ProcessingDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRowsIngested() {
	s.RowsIngested.Inc()
}

func (s *Service) IncEventsAccepted() {
	s.EventsAccepted.Inc()
}

func (s *Service) IncDedupeSkips() {
	s.DedupeSkips.Inc()
}

func (s *Service) IncValidationFailures() {
	s.ValidationFailures.Inc()
}

func (s *Service) IncLockContention() {
	s.LockContention.Inc()
}

func (s *Service) IncCacheHit(tier string) {
	s.CacheHits.WithLabelValues(tier).Inc()
}

func (s *Service) IncCacheMiss() {
	s.CacheMisses.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
