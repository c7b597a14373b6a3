package club

import (
	"database/sql"
	"errors"

	"github.com/fcnordhavn/matchday/internal/match"
)

// ErrMatchNotFound reports a lookup for a match ID with no stored row.
// Callers use errors.Is to tell a missing match from a store failure.
var ErrMatchNotFound = errors.New("match not found")

// ClubStore defines the interface for the club's authoritative match
// and player state. Correctness of event processing depends on this
// store, never on the cache tier.
type ClubStore interface {
	CreateMatch(m *match.Match, starters []string) error
	GetMatch(matchID string) (*match.Match, error)
	GetAllMatches() ([]*match.Match, error)
	GetPlayerStates(matchID string) ([]*match.PlayerMatchState, error)
	// SaveMatchState persists the match row and all player states in a
	// single transaction, so one event's tracker updates land
	// atomically or not at all. A non-nil commit callback runs inside
	// the same transaction, letting the caller tie the idempotency
	// outcome to the state write: if the callback fails, nothing is
	// persisted.
	SaveMatchState(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error
	// FlushSeasonStats folds a closed match's player states into the
	// season-to-date aggregates.
	FlushSeasonStats(m *match.Match, states []*match.PlayerMatchState) error
	GetSeasonStats() ([]SeasonStats, error)
	GetSeasonStatsByPlayer(player string) (*SeasonStats, error)
	Clear()
	ClearMatch(matchID string)
}
