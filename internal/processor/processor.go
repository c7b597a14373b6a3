// Package processor runs raw event rows through the full match
// pipeline: validation, side classification, idempotency reservation,
// tracker updates, atomic persistence, commit and distribution.
package processor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/fcnordhavn/matchday/internal/cache"
	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/discipline"
	"github.com/fcnordhavn/matchday/internal/idempotency"
	"github.com/fcnordhavn/matchday/internal/ingest"
	"github.com/fcnordhavn/matchday/internal/match"
	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/minutes"
	"github.com/fcnordhavn/matchday/internal/notifier"
	"github.com/fcnordhavn/matchday/internal/opposition"
	"github.com/fcnordhavn/matchday/internal/payload"
	"github.com/fcnordhavn/matchday/internal/pubsub"
)

const seasonStatsKey = "season:stats"

func scorelineKey(matchID string) string { return "scoreline:" + matchID }
func minutesKey(matchID string) string   { return "minutes:" + matchID }

// New creates a new Processor.
func New(
	store club.ClubStore,
	guard idempotency.Store,
	locks *idempotency.MatchLocks,
	resolver *opposition.Resolver,
	cacheMgr *cache.Manager,
	publisher pubsub.PubSubClient,
	notif notifier.Notifier,
	metricsSvc metrics.Metrics,
	topic string,
	lockWait time.Duration,
) *Processor {
	return &Processor{
		store:     store,
		guard:     guard,
		locks:     locks,
		resolver:  resolver,
		minutes:   minutes.New(),
		cards:     discipline.New(),
		cache:     cacheMgr,
		publisher: publisher,
		notifier:  notif,
		metrics:   metricsSvc,
		topic:     topic,
		lockWait:  lockWait,
		now:       time.Now,
	}
}

// ProcessRow runs one raw row end to end. Replays of an
// already-processed row return the stored outcome with Skipped set and
// touch no state.
func (p *Processor) ProcessRow(ctx context.Context, matchID string, row ingest.Row, dryRun bool) (*match.Outcome, error) {
	start := p.now()
	p.metrics.IncRowsIngested()

	ev, err := ingest.ParseRow(matchID, row)
	if err != nil {
		p.metrics.IncValidationFailures()
		return nil, err
	}
	if _, err := p.resolver.Resolve(ev); err != nil {
		p.metrics.IncValidationFailures()
		return nil, err
	}
	ev.ID = uuid.NewString()
	// The fingerprint is taken before any escalation rewrite so that a
	// replayed row always hashes to the same key.
	ev.Fingerprint = idempotency.Fingerprint(ev)

	release, err := p.locks.Acquire(ctx, matchID, p.lockWait)
	if err != nil {
		if errors.Is(err, match.ErrContention) {
			p.metrics.IncLockContention()
			log.Warn("Match lock contention, caller should retry", "matchID", matchID)
		}
		return nil, err
	}
	defer release()

	if !dryRun {
		acquired, prior, err := p.guard.Reserve(ctx, ev.Fingerprint, matchID)
		if err != nil {
			return nil, err
		}
		if !acquired {
			if prior != nil {
				p.metrics.IncDedupeSkips()
				log.Info("Duplicate event skipped", "matchID", matchID, "fingerprint", ev.Fingerprint)
				skipped := *prior
				skipped.Skipped = true
				return &skipped, nil
			}
			return nil, match.ErrContention
		}
	}

	outcome, pl, err := p.apply(ctx, ev, dryRun)
	if err != nil {
		if !dryRun {
			if relErr := p.guard.Release(ctx, ev.Fingerprint); relErr != nil {
				log.Error("Failed to release reservation", "fingerprint", ev.Fingerprint, "error", relErr)
			}
		}
		if match.IsValidation(err) || match.IsRuleViolation(err) {
			p.metrics.IncValidationFailures()
		}
		return nil, err
	}

	p.metrics.IncEventsAccepted()
	log.Info("Event accepted",
		"matchID", matchID,
		"type", ev.Type,
		"minute", ev.Minute,
		"score", fmt.Sprintf("%d-%d", outcome.HomeScore, outcome.AwayScore),
	)

	if !dryRun {
		if err := p.publisher.SendMessage(p.topic, pl); err != nil {
			log.Error("Failed to publish payload", "topic", p.topic, "error", err)
		}
	}
	if _, err := p.notifier.SendEventNotification(pl, dryRun); err != nil {
		log.Error("Failed to send notification", "matchID", matchID, "error", err)
	}

	p.metrics.ObserveProcessingDuration(p.now().Sub(start).Seconds())
	return outcome, nil
}

// apply loads current state, runs the tracker updates for the event and
// persists the result atomically, committing the idempotency outcome in
// the same transaction. Any error leaves the stored state untouched,
// since all mutation happens on in-memory copies.
func (p *Processor) apply(ctx context.Context, ev *match.Event, dryRun bool) (*match.Outcome, payload.Payload, error) {
	m, err := p.store.GetMatch(ev.MatchID)
	if err != nil {
		return nil, payload.Payload{}, err
	}
	states, err := p.store.GetPlayerStates(ev.MatchID)
	if err != nil {
		return nil, payload.Payload{}, err
	}

	registry := make(map[string]*match.PlayerMatchState, len(states))
	for _, s := range states {
		registry[s.Player] = s
	}
	// Players first seen mid-match (e.g. an unannounced substitute)
	// enter the registry as benched substitutes.
	lookup := func(player string) *match.PlayerMatchState {
		if s, ok := registry[player]; ok {
			return s
		}
		s := &match.PlayerMatchState{
			MatchID: ev.MatchID,
			Player:  player,
			Role:    match.RoleSubstitute,
			Phase:   match.PhaseBench,
		}
		registry[player] = s
		states = append(states, s)
		return s
	}

	if ev.Minute > m.Clock {
		m.Clock = ev.Minute
	}

	switch ev.Type {
	case match.EventKickoff:
		m.Status = match.StatusFirstHalf
		if err := p.minutes.Kickoff(states, ev.Minute); err != nil {
			return nil, payload.Payload{}, err
		}

	case match.EventHalfTime:
		m.Status = match.StatusHalfTime

	case match.EventSecondHalf:
		m.Status = match.StatusSecondHalf

	case match.EventFullTime:
		m.Status = match.StatusFullTime
		p.minutes.FullTime(states, ev.Minute)

	case match.EventGoal:
		lookup(ev.Player).Goals++
		if ev.Assist != "" {
			lookup(ev.Assist).Assists++
		}
		m.HomeScore++

	case match.EventGoalOpposition:
		m.AwayScore++

	case match.EventCard:
		s := lookup(ev.Player)
		res := p.cards.RecordCard(s, ev.Severity, ev.Minute)
		if res.Escalated {
			ev.Type = match.EventSecondYellow
		}
		if res.SendOff {
			if err := p.minutes.SendOff(s, ev.Minute); err != nil {
				return nil, payload.Payload{}, err
			}
		}

	case match.EventCardOpposition:
		p.cards.RecordOppositionCard(m, ev.Severity)

	case match.EventSubstitution:
		if err := p.minutes.SubOff(lookup(ev.PlayerOut), ev.Minute); err != nil {
			return nil, payload.Payload{}, err
		}
		if err := p.minutes.SubOn(lookup(ev.PlayerIn), ev.Minute); err != nil {
			return nil, payload.Payload{}, err
		}
	}

	outcome := &match.Outcome{
		EventID:   ev.ID,
		Type:      ev.Type,
		Minute:    ev.Minute,
		Player:    ev.Player,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
	}

	if !dryRun {
		// The outcome commit rides the same transaction as the state
		// write, so a failed commit persists nothing and the released
		// reservation makes the row retryable.
		err := p.store.SaveMatchState(m, states, func(tx *sql.Tx) error {
			return p.guard.Commit(ctx, tx, ev.Fingerprint, outcome)
		})
		if err != nil {
			return nil, payload.Payload{}, err
		}
		if ev.Type == match.EventFullTime {
			if err := p.store.FlushSeasonStats(m, states); err != nil {
				return nil, payload.Payload{}, err
			}
			p.cache.Invalidate(seasonStatsKey)
		}
		p.cache.Set(scorelineKey(m.ID), fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore), cache.TierFor(cache.CategoryScoreline))
		p.cache.Invalidate(minutesKey(m.ID))
	}

	return outcome, payload.Build(ev, m, registry, p.now()), nil
}

// MatchMinutes returns cumulative minutes per player, reading through
// the warm cache tier.
func (p *Processor) MatchMinutes(matchID string) (map[string]int, error) {
	key := minutesKey(matchID)
	if v, _, tier, ok := p.cache.Get(key); ok {
		if mins, ok := v.(map[string]int); ok {
			p.metrics.IncCacheHit(string(tier))
			return mins, nil
		}
	}
	p.metrics.IncCacheMiss()

	m, err := p.store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	states, err := p.store.GetPlayerStates(matchID)
	if err != nil {
		return nil, err
	}

	mins := make(map[string]int, len(states))
	for _, s := range states {
		mins[s.Player] = s.Minutes(m.Clock)
	}
	p.cache.Set(key, mins, cache.TierFor(cache.CategoryMatchAggregates))
	return mins, nil
}

// SeasonStats returns season-to-date aggregates, reading through the
// cold cache tier.
func (p *Processor) SeasonStats() ([]club.SeasonStats, error) {
	if v, _, tier, ok := p.cache.Get(seasonStatsKey); ok {
		if stats, ok := v.([]club.SeasonStats); ok {
			p.metrics.IncCacheHit(string(tier))
			return stats, nil
		}
	}
	p.metrics.IncCacheMiss()

	stats, err := p.store.GetSeasonStats()
	if err != nil {
		return nil, err
	}
	p.cache.Set(seasonStatsKey, stats, cache.TierFor(cache.CategorySeasonStats))
	return stats, nil
}
