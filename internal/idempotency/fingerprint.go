// Package idempotency deduplicates events by a stable fingerprint and
// enforces the exactly-once processing contract across concurrent
// invocations.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Fingerprint computes the stable dedup key for an event: a hash of
// match ID, event type, player, minute and, for cards, the severity
// (empty for every other event type).
func Fingerprint(ev *match.Event) string {
	severity := ""
	switch ev.Type {
	case match.EventCard, match.EventCardOpposition, match.EventSecondYellow:
		severity = string(ev.Severity)
	}
	player := ev.Player
	if ev.Type == match.EventSubstitution {
		player = ev.PlayerOut + ">" + ev.PlayerIn
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%s", ev.MatchID, ev.Type, player, ev.Minute, severity)))
	return hex.EncodeToString(sum[:])
}
