// Package opposition classifies events as belonging to the tracked team
// or to the opposition. Classification happens before any tracker
// update, since it decides which score counter and player registry an
// event touches.
package opposition

import (
	"strings"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Resolver resolves the side of an event from its player value. A
// configured sentinel player value (e.g. "Goal" on goal rows,
// "Opposition" on card rows) marks the event as the opposition's; all
// other player values resolve to the tracked team.
type Resolver struct {
	sentinels map[string]struct{}
}

// New creates a Resolver from the configured sentinel values.
func New(sentinels []string) *Resolver {
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &Resolver{sentinels: set}
}

// Resolve classifies the draft event and rewrites it to its canonical
// form: sentinel-player goal/card events become their opposition
// variants with the player cleared. Status events are always the
// team's. A would-be team event with a missing player is rejected as a
// validation error, never silently defaulted to opposition.
func (r *Resolver) Resolve(ev *match.Event) (match.Side, error) {
	if ev.Type.IsStatusEvent() || ev.Type == match.EventSubstitution {
		return match.SideTeam, nil
	}

	if ev.Player == "" {
		return "", &match.ValidationError{Field: "Player", Value: "", Reason: "missing player on team event"}
	}

	if !r.isSentinel(ev.Player) {
		return match.SideTeam, nil
	}

	switch ev.Type {
	case match.EventGoal:
		ev.Type = match.EventGoalOpposition
	case match.EventCard:
		ev.Type = match.EventCardOpposition
	default:
		return "", &match.ValidationError{Field: "Player", Value: ev.Player, Reason: "sentinel player not valid for this event type"}
	}
	ev.Player = ""
	ev.Assist = ""
	return match.SideOpposition, nil
}

func (r *Resolver) isSentinel(player string) bool {
	_, ok := r.sentinels[strings.ToLower(strings.TrimSpace(player))]
	return ok
}
