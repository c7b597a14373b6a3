// Package payload maps canonical events plus current match aggregates
// into the outbound payload contract consumed by the webhook
// dispatcher. Building a payload is a pure function with no side
// effects and no I/O; every field has already passed ingestion
// sanitization.
package payload

import (
	"time"

	"github.com/fcnordhavn/matchday/internal/match"
)

const (
	// Source identifies the producer in the outbound envelope.
	Source = "matchday-core"
	// Version is the payload contract version.
	Version = "1"
)

// envelopeTypes is the static mapping from canonical event types to
// external envelope event types.
var envelopeTypes = map[match.EventType]string{
	match.EventGoal:           "goal_scored",
	match.EventGoalOpposition: "goal_conceded",
	match.EventCard:           "card_shown",
	match.EventCardOpposition: "card_opposition",
	match.EventSecondYellow:   "card_second_yellow",
	match.EventSubstitution:   "substitution_made",
	match.EventKickoff:        "match_kickoff",
	match.EventHalfTime:       "match_half_time",
	match.EventSecondHalf:     "match_second_half",
	match.EventFullTime:       "match_full_time",
}

// Payload is the outbound record handed to the dispatcher. Field
// presence depends on the event type; the envelope fields are always
// set.
type Payload struct {
	EventType string `json:"event_type"`
	MatchID   string `json:"match_id"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Version   string `json:"version"`

	Minute    int    `json:"minute"`
	Opponent  string `json:"opponent,omitempty"`
	Status    string `json:"status,omitempty"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`

	Player        string `json:"player,omitempty"`
	Assist        string `json:"assist,omitempty"`
	CardType      string `json:"card_type,omitempty"`
	PlayerIn      string `json:"player_in,omitempty"`
	PlayerOut     string `json:"player_out,omitempty"`
	MinutesPlayed int    `json:"minutes_played,omitempty"`
}

// Build assembles the outbound payload for an accepted event. The
// states map holds the current PlayerMatchState for players involved in
// the event; now supplies the envelope timestamp so the function stays
// deterministic under test.
func Build(ev *match.Event, m *match.Match, states map[string]*match.PlayerMatchState, now time.Time) Payload {
	p := Payload{
		EventType: envelopeTypes[ev.Type],
		MatchID:   m.ID,
		Timestamp: now.Unix(),
		Source:    Source,
		Version:   Version,
		Minute:    ev.Minute,
		Opponent:  m.Opponent,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
	}

	switch ev.Type {
	case match.EventGoal:
		p.Player = ev.Player
		p.Assist = ev.Assist
	case match.EventCard, match.EventSecondYellow:
		p.Player = ev.Player
		p.CardType = string(ev.Severity)
	case match.EventCardOpposition:
		p.CardType = string(ev.Severity)
	case match.EventSubstitution:
		p.PlayerIn = ev.PlayerIn
		p.PlayerOut = ev.PlayerOut
		if s, ok := states[ev.PlayerOut]; ok {
			p.MinutesPlayed = s.Minutes(m.Clock)
		}
	case match.EventKickoff, match.EventHalfTime, match.EventSecondHalf, match.EventFullTime:
		p.Status = string(m.Status)
	}

	return p
}
