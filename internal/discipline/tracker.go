// Package discipline tracks per-player card history and applies the
// escalation rule: a second yellow in the same match converts to a red
// outcome distinct from a direct red.
package discipline

import (
	"github.com/charmbracelet/log"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Result describes the outcome of recording a card.
type Result struct {
	// Escalated is set when a yellow was the player's second in this
	// match, producing the derived second_yellow classification.
	Escalated bool
	// SendOff is set when the card ends the player's participation
	// (straight red or second yellow).
	SendOff bool
}

// Tracker appends card records and evaluates escalation.
type Tracker struct{}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{}
}

// RecordCard appends a card to the player's history and reports whether
// it escalates. The second yellow itself is kept in the history; the
// derived classification lives on the event, not the card.
func (t *Tracker) RecordCard(s *match.PlayerMatchState, severity match.CardSeverity, minute int) Result {
	priorYellows := s.YellowCount()
	s.Cards = append(s.Cards, match.Card{Severity: severity, Minute: minute})

	switch severity {
	case match.CardRed:
		return Result{SendOff: true}
	case match.CardYellow:
		if priorYellows >= 1 {
			log.Info("Second yellow card, escalating to red outcome", "player", s.Player, "minute", minute)
			return Result{Escalated: true, SendOff: true}
		}
	}
	return Result{}
}

// RecordOppositionCard tracks an opposition card on the match-level
// counters. Opposition cards are never attributed to a named player.
func (t *Tracker) RecordOppositionCard(m *match.Match, severity match.CardSeverity) {
	switch severity {
	case match.CardRed:
		m.OppositionRed++
	default:
		m.OppositionYellow++
	}
}
