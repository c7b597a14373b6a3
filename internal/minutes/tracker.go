// Package minutes maintains the per-player on-pitch state machine and
// computes playing time from intervals. Recomputation is linear in the
// number of intervals for a player, never in the number of raw events.
package minutes

import (
	"github.com/charmbracelet/log"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Tracker mutates PlayerMatchState intervals. State transitions:
// Bench -> OnPitch (kickoff or sub-on), OnPitch -> OffPitch (sub-off,
// red card, full time). OffPitch is final; a player subbed off cannot
// return.
type Tracker struct{}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Kickoff opens an interval for every starter currently on the bench.
// Substitutes stay benched until they come on.
func (t *Tracker) Kickoff(states []*match.PlayerMatchState, minute int) error {
	for _, s := range states {
		if s.Role != match.RoleStarter || s.Phase != match.PhaseBench {
			continue
		}
		if err := t.enter(s, minute); err != nil {
			return err
		}
	}
	return nil
}

// SubOn brings a substitute onto the pitch, opening an interval at the
// substitution minute.
func (t *Tracker) SubOn(s *match.PlayerMatchState, minute int) error {
	if s.Phase == match.PhaseOffPitch {
		return &match.RuleViolation{Player: s.Player, Reason: "player was substituted off and cannot return"}
	}
	return t.enter(s, minute)
}

// SubOff closes the outgoing player's interval at the substitution
// minute and marks them off-pitch for good.
func (t *Tracker) SubOff(s *match.PlayerMatchState, minute int) error {
	return t.leave(s, minute, "substituted off a player who is not on the pitch")
}

// SendOff closes the player's interval at the card minute. Used for a
// straight red and for a second yellow.
func (t *Tracker) SendOff(s *match.PlayerMatchState, minute int) error {
	return t.leave(s, minute, "sent off a player who is not on the pitch")
}

// FullTime closes every open interval at the final minute, including
// added time when provided.
func (t *Tracker) FullTime(states []*match.PlayerMatchState, finalMinute int) {
	for _, s := range states {
		iv := s.OpenInterval()
		if iv == nil {
			continue
		}
		end := finalMinute
		if end < iv.Start {
			end = iv.Start
		}
		iv.End = &end
		s.Phase = match.PhaseOffPitch
		log.Debug("Closed interval at full time", "player", s.Player, "minute", end)
	}
}

func (t *Tracker) enter(s *match.PlayerMatchState, minute int) error {
	if s.OpenInterval() != nil {
		return &match.RuleViolation{Player: s.Player, Reason: "player already has an open on-pitch interval"}
	}
	s.Intervals = append(s.Intervals, match.Interval{Start: minute})
	s.Phase = match.PhaseOnPitch
	return nil
}

func (t *Tracker) leave(s *match.PlayerMatchState, minute int, reason string) error {
	iv := s.OpenInterval()
	if iv == nil {
		return &match.RuleViolation{Player: s.Player, Reason: reason}
	}
	end := minute
	if end < iv.Start {
		end = iv.Start
	}
	iv.End = &end
	s.Phase = match.PhaseOffPitch
	return nil
}
