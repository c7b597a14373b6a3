package http

import (
	"net/http"

	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/config"
	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/processor"
	"github.com/fcnordhavn/matchday/internal/pubsub"
)

func NewServer(store club.ClubStore, proc processor.EventProcessor, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsubClient pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Processor:      proc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsubClient,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an
	// authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.MatchesHandler(), paramsMiddleware))
	s.Router.Handle("/match", Chain(s.MatchStateHandler(), paramsMiddleware))
	s.Router.Handle("/event", Chain(s.SubmitEventHandler(), paramsMiddleware))
	s.Router.Handle("/events", Chain(s.SubmitEventBatchHandler(), paramsMiddleware))
	s.Router.Handle("/minutes", Chain(s.MatchMinutesHandler(), paramsMiddleware))
	s.Router.Handle("/season-stats", Chain(s.SeasonStatsHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/rows", Chain(s.PubSubRowsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
