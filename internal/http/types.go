package http

import (
	"net/http"

	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/config"
	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/processor"
	"github.com/fcnordhavn/matchday/internal/pubsub"
)

type Server struct {
	Store          club.ClubStore
	Processor      processor.EventProcessor
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// createMatchRequest is the body for POST /matches.
type createMatchRequest struct {
	ID       string   `json:"id"`
	Opponent string   `json:"opponent"`
	Date     int64    `json:"date"`
	Starters []string `json:"starters"`
}

// matchStateResponse is the body for GET /match.
type matchStateResponse struct {
	Match   any `json:"match"`
	Players any `json:"players"`
}
