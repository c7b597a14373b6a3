// Package ingest validates and normalizes raw event rows from the
// spreadsheet-style input layer into draft events.
package ingest

import (
	"strconv"
	"strings"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Row is an untyped key-value event row. Recognized columns: Minute,
// Event, Player, Assist, Home Score, Away Score, Notes, Card Type.
// Column order is never assumed.
type Row map[string]string

// Recognized column names.
const (
	ColMinute   = "Minute"
	ColEvent    = "Event"
	ColPlayer   = "Player"
	ColAssist   = "Assist"
	ColNotes    = "Notes"
	ColCardType = "Card Type"
)

// eventLabels maps normalized sheet labels to canonical event types.
var eventLabels = map[string]match.EventType{
	"goal":         match.EventGoal,
	"card":         match.EventCard,
	"substitution": match.EventSubstitution,
	"sub":          match.EventSubstitution,
	"kickoff":      match.EventKickoff,
	"kick off":     match.EventKickoff,
	"half time":    match.EventHalfTime,
	"halftime":     match.EventHalfTime,
	"second half":  match.EventSecondHalf,
	"full time":    match.EventFullTime,
	"fulltime":     match.EventFullTime,
}

// ParseRow validates a raw row and emits a normalized draft event with
// no fingerprint assigned. On failure it returns a ValidationError
// naming the offending field; no state is mutated.
func ParseRow(matchID string, row Row) (*match.Event, error) {
	label := strings.TrimSpace(row[ColEvent])
	eventType, ok := eventLabels[strings.ToLower(label)]
	if !ok {
		return nil, &match.ValidationError{Field: ColEvent, Value: label, Reason: "unrecognized event label"}
	}

	rawMinute := strings.TrimSpace(row[ColMinute])
	minute, err := strconv.Atoi(rawMinute)
	if err != nil {
		return nil, &match.ValidationError{Field: ColMinute, Value: rawMinute, Reason: "not an integer"}
	}
	if minute < 0 || minute > match.MaxMinute {
		return nil, &match.ValidationError{Field: ColMinute, Value: rawMinute, Reason: "out of range [0,130]"}
	}

	player := strings.TrimSpace(row[ColPlayer])
	assist := strings.TrimSpace(row[ColAssist])

	ev := &match.Event{
		MatchID: matchID,
		Type:    eventType,
		Minute:  minute,
	}

	switch eventType {
	case match.EventGoal:
		if player == "" {
			return nil, &match.ValidationError{Field: ColPlayer, Value: player, Reason: "player required for goal events"}
		}
		ev.Player = player
		ev.Assist = assist

	case match.EventCard:
		if player == "" {
			return nil, &match.ValidationError{Field: ColPlayer, Value: player, Reason: "player required for card events"}
		}
		ev.Player = player
		ev.Severity = parseSeverity(row[ColCardType])

	case match.EventSubstitution:
		// Convention from the event sheet: Player holds the outgoing
		// player, Assist holds the incoming one.
		if player == "" {
			return nil, &match.ValidationError{Field: ColPlayer, Value: player, Reason: "outgoing player required for substitutions"}
		}
		if assist == "" {
			return nil, &match.ValidationError{Field: ColAssist, Value: assist, Reason: "incoming player required for substitutions"}
		}
		ev.PlayerOut = player
		ev.PlayerIn = assist

	default:
		// Status events carry no player.
	}

	return ev, nil
}

func parseSeverity(raw string) match.CardSeverity {
	if strings.EqualFold(strings.TrimSpace(raw), "red") {
		return match.CardRed
	}
	return match.CardYellow
}
