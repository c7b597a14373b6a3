package processor

import (
	"time"

	"github.com/fcnordhavn/matchday/internal/cache"
	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/discipline"
	"github.com/fcnordhavn/matchday/internal/idempotency"
	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/minutes"
	"github.com/fcnordhavn/matchday/internal/notifier"
	"github.com/fcnordhavn/matchday/internal/opposition"
	"github.com/fcnordhavn/matchday/internal/pubsub"
)

var _ EventProcessor = &Processor{}

// Processor orchestrates the event pipeline. It owns no match state
// itself; the club store is authoritative and the cache is advisory.
type Processor struct {
	store     club.ClubStore
	guard     idempotency.Store
	locks     *idempotency.MatchLocks
	resolver  *opposition.Resolver
	minutes   *minutes.Tracker
	cards     *discipline.Tracker
	cache     *cache.Manager
	publisher pubsub.PubSubClient
	notifier  notifier.Notifier
	metrics   metrics.Metrics

	topic    string
	lockWait time.Duration
	now      func() time.Time
}
