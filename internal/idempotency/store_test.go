package idempotency_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fcnordhavn/matchday/internal/database"
	"github.com/fcnordhavn/matchday/internal/idempotency"
	"github.com/fcnordhavn/matchday/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (idempotency.Store, *sql.DB) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return idempotency.New(db), db
}

func TestFingerprintStability(t *testing.T) {
	ev := &match.Event{MatchID: "m1", Type: match.EventGoal, Player: "Smith", Minute: 34}
	same := &match.Event{MatchID: "m1", Type: match.EventGoal, Player: "Smith", Minute: 34}
	assert.Equal(t, idempotency.Fingerprint(ev), idempotency.Fingerprint(same))

	other := &match.Event{MatchID: "m1", Type: match.EventGoal, Player: "Smith", Minute: 35}
	assert.NotEqual(t, idempotency.Fingerprint(ev), idempotency.Fingerprint(other))
}

func TestFingerprintIncludesSeverityForCards(t *testing.T) {
	yellow := &match.Event{MatchID: "m1", Type: match.EventCard, Player: "Jones", Minute: 40, Severity: match.CardYellow}
	red := &match.Event{MatchID: "m1", Type: match.EventCard, Player: "Jones", Minute: 40, Severity: match.CardRed}
	assert.NotEqual(t, idempotency.Fingerprint(yellow), idempotency.Fingerprint(red))

	// Severity never contributes for non-card events.
	a := &match.Event{MatchID: "m1", Type: match.EventGoal, Player: "Smith", Minute: 10}
	b := &match.Event{MatchID: "m1", Type: match.EventGoal, Player: "Smith", Minute: 10, Severity: match.CardRed}
	assert.Equal(t, idempotency.Fingerprint(a), idempotency.Fingerprint(b))
}

func TestReserveCommitReplay(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	acquired, prior, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Nil(t, prior)

	outcome := &match.Outcome{EventID: "e1", Type: match.EventGoal, Minute: 34, HomeScore: 1}
	require.NoError(t, store.Commit(ctx, nil, "fp1", outcome))

	acquired, prior, err = store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, prior)
	assert.Equal(t, "e1", prior.EventID)
	assert.Equal(t, 1, prior.HomeScore)
}

func TestReserveWhileInFlight(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	acquired, _, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.True(t, acquired)

	// Same fingerprint reserved but not committed: no prior outcome.
	acquired, prior, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Nil(t, prior)
}

func TestReleaseAllowsRetry(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	acquired, _, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, store.Release(ctx, "fp1"))

	acquired, prior, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.True(t, acquired, "released fingerprint can be reserved again")
	assert.Nil(t, prior)
}

func TestReleaseDoesNotRemoveCommitted(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, nil, "fp1", &match.Outcome{EventID: "e1"}))

	require.NoError(t, store.Release(ctx, "fp1"))

	_, prior, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.NotNil(t, prior, "committed outcomes survive a stray release")
}

func TestCommitWithinTransaction(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	acquired, _, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.True(t, acquired)

	// A rolled-back transaction leaves the fingerprint reserved, not
	// committed, so the reservation can still be released for a retry.
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, tx, "fp1", &match.Outcome{EventID: "e1"}))
	require.NoError(t, tx.Rollback())

	acquired, prior, err := store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Nil(t, prior, "rolled-back commit must not surface an outcome")

	require.NoError(t, store.Release(ctx, "fp1"))

	// A committed transaction makes the outcome durable.
	acquired, _, err = store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	require.True(t, acquired)

	tx, err = db.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, tx, "fp1", &match.Outcome{EventID: "e1", HomeScore: 1}))
	require.NoError(t, tx.Commit())

	acquired, prior, err = store.Reserve(ctx, "fp1", "m1")
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, prior)
	assert.Equal(t, 1, prior.HomeScore)
}

func TestMatchLocks(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		locks := idempotency.NewMatchLocks()

		release, err := locks.Acquire(context.Background(), "m1", 100*time.Millisecond)
		require.NoError(t, err)
		release()

		release, err = locks.Acquire(context.Background(), "m1", 100*time.Millisecond)
		require.NoError(t, err)
		release()
	})

	t.Run("bounded wait fails with contention error", func(t *testing.T) {
		locks := idempotency.NewMatchLocks()

		release, err := locks.Acquire(context.Background(), "m1", 100*time.Millisecond)
		require.NoError(t, err)
		defer release()

		_, err = locks.Acquire(context.Background(), "m1", 50*time.Millisecond)
		assert.ErrorIs(t, err, match.ErrContention)
	})

	t.Run("unrelated matches do not serialize", func(t *testing.T) {
		locks := idempotency.NewMatchLocks()

		releaseA, err := locks.Acquire(context.Background(), "m1", 50*time.Millisecond)
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := locks.Acquire(context.Background(), "m2", 50*time.Millisecond)
		require.NoError(t, err)
		releaseB()
	})

	t.Run("release is idempotent", func(t *testing.T) {
		locks := idempotency.NewMatchLocks()

		release, err := locks.Acquire(context.Background(), "m1", 50*time.Millisecond)
		require.NoError(t, err)
		release()
		release() // double release must not free another holder's slot

		release2, err := locks.Acquire(context.Background(), "m1", 50*time.Millisecond)
		require.NoError(t, err)
		release2()
	})
}
