package processor

import (
	"context"

	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/ingest"
	"github.com/fcnordhavn/matchday/internal/match"
)

// EventProcessor is the high-level interface for the event pipeline.
// This decouples the HTTP and CLI surfaces from the concrete processor.
type EventProcessor interface {
	// ProcessRow runs one raw row through the full pipeline:
	// validation, side classification, idempotency reservation,
	// tracker updates, persistence, commit and distribution. With
	// dryRun set it computes the outcome without reserving,
	// persisting or publishing anything.
	ProcessRow(ctx context.Context, matchID string, row ingest.Row, dryRun bool) (*match.Outcome, error)
	// MatchMinutes returns cumulative minutes per player for a live
	// match, served through the warm cache tier.
	MatchMinutes(matchID string) (map[string]int, error)
	// SeasonStats returns season-to-date aggregates, served through
	// the cold cache tier.
	SeasonStats() ([]club.SeasonStats, error)
}
