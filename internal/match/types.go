package match

// Status defines the lifecycle state of a live match.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusKickoff    Status = "KICKOFF"
	StatusFirstHalf  Status = "FIRST_HALF"
	StatusHalfTime   Status = "HALF_TIME"
	StatusSecondHalf Status = "SECOND_HALF"
	StatusFullTime   Status = "FULL_TIME"
	StatusPostponed  Status = "POSTPONED"
)

// EventType identifies a canonical match event.
type EventType string

const (
	EventGoal           EventType = "goal"
	EventGoalOpposition EventType = "goal_opposition"
	EventCard           EventType = "card"
	EventCardOpposition EventType = "card_opposition"
	EventSecondYellow   EventType = "second_yellow"
	EventSubstitution   EventType = "substitution"
	EventKickoff        EventType = "kickoff"
	EventHalfTime       EventType = "half_time"
	EventSecondHalf     EventType = "second_half"
	EventFullTime       EventType = "full_time"
)

// IsStatusEvent reports whether the event changes match status rather than
// referencing a specific player.
func (t EventType) IsStatusEvent() bool {
	switch t {
	case EventKickoff, EventHalfTime, EventSecondHalf, EventFullTime:
		return true
	}
	return false
}

// IsOpposition reports whether the event is attributed to the non-tracked team.
func (t EventType) IsOpposition() bool {
	return t == EventGoalOpposition || t == EventCardOpposition
}

// Side identifies which team an event belongs to.
type Side string

const (
	SideTeam       Side = "TEAM"
	SideOpposition Side = "OPPOSITION"
)

// CardSeverity is the severity of a disciplinary card.
type CardSeverity string

const (
	CardYellow CardSeverity = "YELLOW"
	CardRed    CardSeverity = "RED"
)

// Role describes how a player entered the match.
type Role string

const (
	RoleStarter    Role = "STARTER"
	RoleSubstitute Role = "SUBSTITUTE"
)

// Phase is a player's position in the on-pitch state machine.
// OffPitch is final: a player who has been subbed off or sent off
// cannot return.
type Phase string

const (
	PhaseBench    Phase = "BENCH"
	PhaseOnPitch  Phase = "ON_PITCH"
	PhaseOffPitch Phase = "OFF_PITCH"
)

// MaxMinute is the upper bound for a valid event minute. It covers
// extra time plus a generous stoppage allowance.
const MaxMinute = 130

// Match is the live match record. It is owned exclusively by the
// event-processing core between kickoff and full time.
type Match struct {
	ID               string `json:"id"`
	Opponent         string `json:"opponent"`
	Date             int64  `json:"date"` // Unix timestamp of scheduled kickoff
	Status           Status `json:"status"`
	HomeScore        int    `json:"home_score"` // tracked team
	AwayScore        int    `json:"away_score"` // opposition
	Clock            int    `json:"clock"`      // highest minute seen so far
	OppositionYellow int    `json:"opposition_yellow"`
	OppositionRed    int    `json:"opposition_red"`
}

// Interval is a contiguous [Start, End) span of minutes during which a
// player is credited with playing time. End is nil while the interval
// is still open.
type Interval struct {
	Start int  `json:"start"`
	End   *int `json:"end"`
}

// Card is a single disciplinary record for a player.
type Card struct {
	Severity CardSeverity `json:"severity"`
	Minute   int          `json:"minute"`
}

// PlayerMatchState tracks one player's participation in one match.
// Cumulative minutes are never stored; they are always recomputed from
// the intervals.
type PlayerMatchState struct {
	MatchID   string     `json:"match_id"`
	Player    string     `json:"player"`
	Role      Role       `json:"role"`
	Phase     Phase      `json:"phase"`
	Intervals []Interval `json:"intervals"`
	Cards     []Card     `json:"cards"`
	Goals     int        `json:"goals"`
	Assists   int        `json:"assists"`
}

// OpenInterval returns the currently open interval, or nil.
// A player has at most one open interval at any time.
func (s *PlayerMatchState) OpenInterval() *Interval {
	for i := range s.Intervals {
		if s.Intervals[i].End == nil {
			return &s.Intervals[i]
		}
	}
	return nil
}

// Minutes computes cumulative minutes played up to the given match
// clock. Every interval contributes at most up to the clock, so the
// total never exceeds elapsed match time.
func (s *PlayerMatchState) Minutes(clock int) int {
	total := 0
	for _, iv := range s.Intervals {
		end := clock
		if iv.End != nil && *iv.End < clock {
			end = *iv.End
		}
		if end > iv.Start {
			total += end - iv.Start
		}
	}
	return total
}

// YellowCount returns the number of yellow cards recorded for the player.
func (s *PlayerMatchState) YellowCount() int {
	n := 0
	for _, c := range s.Cards {
		if c.Severity == CardYellow {
			n++
		}
	}
	return n
}

// Event is the canonical, immutable record produced for each accepted
// raw row. The fingerprint is the idempotency key.
type Event struct {
	ID          string       `json:"id"`
	Fingerprint string       `json:"fingerprint"`
	MatchID     string       `json:"match_id"`
	Type        EventType    `json:"type"`
	Minute      int          `json:"minute"`
	Player      string       `json:"player,omitempty"` // empty for opposition/status events
	Assist      string       `json:"assist,omitempty"`
	Severity    CardSeverity `json:"severity,omitempty"`  // cards only
	PlayerIn    string       `json:"player_in,omitempty"` // substitutions only
	PlayerOut   string       `json:"player_out,omitempty"`
}

// Outcome is the result of processing one event, and the unit stored
// against a fingerprint. Replays of an already-processed fingerprint
// return the original outcome with Skipped set.
type Outcome struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Minute    int       `json:"minute"`
	Player    string    `json:"player,omitempty"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Skipped   bool      `json:"skipped"`
}
