package idempotency

import (
	"context"
	"database/sql"

	"github.com/fcnordhavn/matchday/internal/match"
)

// Store is the durable fingerprint store shared across concurrent
// invocations. A fingerprint moves RESERVED -> COMMITTED on success, or
// is released on failure so the event can be retried.
type Store interface {
	// Reserve atomically records the fingerprint if unseen. When the
	// fingerprint was already committed, the prior outcome is returned
	// and acquired is false. When it is currently reserved by another
	// in-flight invocation, acquired is false with a nil prior.
	Reserve(ctx context.Context, fingerprint, matchID string) (acquired bool, prior *match.Outcome, err error)
	// Commit stores the processing outcome against the fingerprint.
	// A non-nil tx makes the commit part of the caller's transaction,
	// so the outcome lands atomically with the state it describes.
	Commit(ctx context.Context, tx *sql.Tx, fingerprint string, outcome *match.Outcome) error
	// Release rolls back a reservation after downstream failure.
	Release(ctx context.Context, fingerprint string) error
}
