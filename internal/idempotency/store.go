package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/fcnordhavn/matchday/internal/match"
)

const (
	stateReserved  = "RESERVED"
	stateCommitted = "COMMITTED"
)

// store is the SQLite-backed Store implementation.
type store struct {
	db *sql.DB
}

// execer is the write surface Commit needs, satisfied by both *sql.DB
// and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// New creates a Store backed by the shared database.
func New(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Reserve(ctx context.Context, fingerprint, matchID string) (bool, *match.Outcome, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO event_outcomes (fingerprint, match_id, state)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING;
	`, fingerprint, matchID, stateReserved)
	if err != nil {
		return false, nil, &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}
	if affected == 1 {
		return true, nil, nil
	}

	// Fingerprint exists: either a committed outcome to replay, or a
	// concurrent reservation still in flight.
	var state string
	var outcomeJSON sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT state, outcome_json FROM event_outcomes WHERE fingerprint = ?", fingerprint,
	).Scan(&state, &outcomeJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Reservation released between our insert and select; the
			// caller should retry the whole invocation.
			return false, nil, nil
		}
		return false, nil, &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}

	if state != stateCommitted || !outcomeJSON.Valid {
		return false, nil, nil
	}

	var prior match.Outcome
	if err := json.Unmarshal([]byte(outcomeJSON.String), &prior); err != nil {
		log.Error("Failed to unmarshal stored outcome", "error", err, "fingerprint", fingerprint)
		return false, nil, &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}
	return false, &prior, nil
}

func (s *store) Commit(ctx context.Context, tx *sql.Tx, fingerprint string, outcome *match.Outcome) error {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	var exec execer = s.db
	if tx != nil {
		exec = tx
	}
	_, err = exec.ExecContext(ctx,
		"UPDATE event_outcomes SET state = ?, outcome_json = ? WHERE fingerprint = ?",
		stateCommitted, string(outcomeJSON), fingerprint,
	)
	if err != nil {
		return &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}
	return nil
}

func (s *store) Release(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM event_outcomes WHERE fingerprint = ? AND state = ?",
		fingerprint, stateReserved,
	)
	if err != nil {
		return &match.StoreUnavailableError{Store: "idempotency", Err: err}
	}
	return nil
}
