package processor

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcnordhavn/matchday/internal/cache"
	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/idempotency"
	"github.com/fcnordhavn/matchday/internal/ingest"
	"github.com/fcnordhavn/matchday/internal/match"
	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/notifier"
	"github.com/fcnordhavn/matchday/internal/opposition"
	"github.com/fcnordhavn/matchday/internal/payload"
	"github.com/fcnordhavn/matchday/internal/pubsub"
)

const testMatchID = "match-1"

// fixture wires a Processor against an in-memory store so tests can
// drive full scenarios and inspect persisted state between events.
type fixture struct {
	proc  *Processor
	store *club.MockStore
	guard *idempotency.MockStore
	locks *idempotency.MatchLocks
	pub   *pubsub.MockPubSubClient
	notif *notifier.Mock
	mets  *metrics.Mock

	m       *match.Match
	states  map[string]*match.PlayerMatchState
	order   []string
	loads   int
	persist func(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error
}

func newFixture(starters ...string) *fixture {
	fx := &fixture{
		guard:  idempotency.NewMock(),
		locks:  idempotency.NewMatchLocks(),
		pub:    pubsub.NewMock("test-project"),
		notif:  notifier.NewMock(),
		mets:   metrics.NewMock(),
		states: make(map[string]*match.PlayerMatchState),
	}
	fx.m = &match.Match{ID: testMatchID, Opponent: "Riverside FC", Status: match.StatusScheduled}
	for _, p := range starters {
		fx.states[p] = &match.PlayerMatchState{
			MatchID: testMatchID,
			Player:  p,
			Role:    match.RoleStarter,
			Phase:   match.PhaseBench,
		}
		fx.order = append(fx.order, p)
	}

	fx.store = club.NewMock()
	fx.store.GetMatchFunc = func(matchID string) (*match.Match, error) {
		fx.loads++
		cp := *fx.m
		return &cp, nil
	}
	fx.store.GetPlayerStatesFunc = func(matchID string) ([]*match.PlayerMatchState, error) {
		out := make([]*match.PlayerMatchState, 0, len(fx.order))
		for _, name := range fx.order {
			out = append(out, cloneState(fx.states[name]))
		}
		return out, nil
	}
	fx.persist = func(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error {
		if commit != nil {
			if err := commit(nil); err != nil {
				return err
			}
		}
		cp := *m
		fx.m = &cp
		for _, s := range states {
			if _, ok := fx.states[s.Player]; !ok {
				fx.order = append(fx.order, s.Player)
			}
			fx.states[s.Player] = cloneState(s)
		}
		return nil
	}
	fx.store.SaveMatchStateFunc = fx.persist

	fx.proc = New(
		fx.store,
		fx.guard,
		fx.locks,
		opposition.New([]string{"Goal", "Opposition"}),
		cache.New(30*time.Second, 5*time.Minute, 30*time.Minute),
		fx.pub,
		fx.notif,
		fx.mets,
		"match-events",
		100*time.Millisecond,
	)
	return fx
}

func cloneState(s *match.PlayerMatchState) *match.PlayerMatchState {
	cp := *s
	cp.Intervals = make([]match.Interval, len(s.Intervals))
	for i, iv := range s.Intervals {
		cp.Intervals[i] = match.Interval{Start: iv.Start}
		if iv.End != nil {
			end := *iv.End
			cp.Intervals[i].End = &end
		}
	}
	cp.Cards = append([]match.Card(nil), s.Cards...)
	return &cp
}

func row(minute int, event, player, assist string) ingest.Row {
	return ingest.Row{
		ingest.ColMinute: strconv.Itoa(minute),
		ingest.ColEvent:  event,
		ingest.ColPlayer: player,
		ingest.ColAssist: assist,
	}
}

func (fx *fixture) submit(t *testing.T, r ingest.Row) *match.Outcome {
	t.Helper()
	out, err := fx.proc.ProcessRow(context.Background(), testMatchID, r, false)
	require.NoError(t, err)
	return out
}

func TestProcessRowGoal(t *testing.T) {
	fx := newFixture("Smith", "Jones")
	fx.submit(t, row(0, "Kickoff", "", ""))

	out := fx.submit(t, row(34, "Goal", "Smith", "Jones"))

	assert.Equal(t, match.EventGoal, out.Type)
	assert.Equal(t, 1, out.HomeScore)
	assert.Equal(t, 0, out.AwayScore)
	assert.False(t, out.Skipped)

	assert.Equal(t, 1, fx.states["Smith"].Goals)
	assert.Equal(t, 1, fx.states["Jones"].Assists)
	assert.Equal(t, 1, fx.m.HomeScore)

	require.Len(t, fx.pub.SendMessageCalls, 2)
	pl, ok := fx.pub.SendMessageCalls[1].Data.(payload.Payload)
	require.True(t, ok)
	assert.Equal(t, "goal_scored", pl.EventType)
	assert.Equal(t, "Smith", pl.Player)
	assert.Equal(t, "Jones", pl.Assist)

	require.Len(t, fx.notif.SendEventNotificationCalls, 2)
	assert.Equal(t, 2, fx.mets.EventsAccepted())
}

func TestProcessRowDuplicateSkipped(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	first := fx.submit(t, row(34, "Goal", "Smith", ""))
	second := fx.submit(t, row(34, "Goal", "Smith", ""))

	assert.False(t, first.Skipped)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, 1, fx.m.HomeScore, "replay must not double-count")
	assert.Equal(t, 1, fx.mets.DedupeSkips())

	// Only kickoff and the first goal were distributed.
	assert.Len(t, fx.pub.SendMessageCalls, 2)
	assert.Len(t, fx.notif.SendEventNotificationCalls, 2)
}

func TestOppositionGoalIsolation(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	out := fx.submit(t, row(55, "Goal", "Goal", ""))

	assert.Equal(t, match.EventGoalOpposition, out.Type)
	assert.Equal(t, 0, out.HomeScore)
	assert.Equal(t, 1, out.AwayScore)
	assert.Empty(t, out.Player)

	_, exists := fx.states["Goal"]
	assert.False(t, exists, "sentinel value must never become a player")
	assert.Zero(t, fx.states["Smith"].Goals)

	pl := fx.pub.SendMessageCalls[1].Data.(payload.Payload)
	assert.Equal(t, "goal_conceded", pl.EventType)
	assert.Empty(t, pl.Player)
}

func TestOppositionCardCounters(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	cardRow := row(40, "Card", "Opposition", "")
	out := fx.submit(t, cardRow)

	assert.Equal(t, match.EventCardOpposition, out.Type)
	assert.Equal(t, 1, fx.m.OppositionYellow)
	assert.Zero(t, fx.m.OppositionRed)
	assert.Empty(t, fx.states["Smith"].Cards)
}

func TestSecondYellowEscalates(t *testing.T) {
	fx := newFixture("Jones")
	fx.submit(t, row(0, "Kickoff", "", ""))

	first := fx.submit(t, row(30, "Card", "Jones", ""))
	second := fx.submit(t, row(60, "Card", "Jones", ""))

	assert.Equal(t, match.EventCard, first.Type)
	assert.Equal(t, match.EventSecondYellow, second.Type)

	jones := fx.states["Jones"]
	assert.Equal(t, match.PhaseOffPitch, jones.Phase)
	assert.Len(t, jones.Cards, 2, "the second yellow stays in the card history")
	require.NotNil(t, jones.Intervals[0].End)
	assert.Equal(t, 60, *jones.Intervals[0].End)

	pl := fx.pub.SendMessageCalls[2].Data.(payload.Payload)
	assert.Equal(t, "card_second_yellow", pl.EventType)
}

func TestStraightRedClosesInterval(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	r := row(25, "Card", "Smith", "")
	r[ingest.ColCardType] = "Red"
	out := fx.submit(t, r)

	assert.Equal(t, match.EventCard, out.Type, "a straight red is not an escalation")
	smith := fx.states["Smith"]
	assert.Equal(t, match.PhaseOffPitch, smith.Phase)
	assert.Equal(t, 25, smith.Minutes(90))
}

func TestSubstitutionMinutes(t *testing.T) {
	fx := newFixture("Smith", "Jones")
	fx.submit(t, row(0, "Kickoff", "", ""))
	fx.submit(t, row(45, "Half Time", "", ""))
	fx.submit(t, row(45, "Second Half", "", ""))
	fx.submit(t, row(70, "Substitution", "Smith", "Brown"))
	fx.submit(t, row(90, "Full Time", "", ""))

	mins, err := fx.proc.MatchMinutes(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, 70, mins["Smith"])
	assert.Equal(t, 20, mins["Brown"])
	assert.Equal(t, 90, mins["Jones"])

	assert.Equal(t, match.RoleSubstitute, fx.states["Brown"].Role)
	assert.Equal(t, match.StatusFullTime, fx.m.Status)
}

func TestReSubstitutionRejected(t *testing.T) {
	fx := newFixture("Smith", "Jones")
	fx.submit(t, row(0, "Kickoff", "", ""))
	fx.submit(t, row(70, "Substitution", "Smith", "Brown"))

	_, err := fx.proc.ProcessRow(context.Background(), testMatchID, row(80, "Substitution", "Jones", "Smith"), false)

	require.Error(t, err)
	assert.True(t, match.IsRuleViolation(err))
	assert.Len(t, fx.guard.ReleaseCalls, 1, "failed event must release its reservation")

	// Jones's interval must be untouched by the rejected event.
	assert.Equal(t, match.PhaseOnPitch, fx.states["Jones"].Phase)
}

func TestSaveFailureReleasesReservation(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	saveErr := errors.New("disk full")
	fx.store.SaveMatchStateFunc = func(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error {
		return saveErr
	}

	_, err := fx.proc.ProcessRow(context.Background(), testMatchID, row(10, "Goal", "Smith", ""), false)
	require.ErrorIs(t, err, saveErr)
	assert.Len(t, fx.guard.ReleaseCalls, 1)
	assert.Zero(t, fx.m.HomeScore)
	assert.Len(t, fx.pub.SendMessageCalls, 1, "failed event must not be published")

	// The released fingerprint makes the same row retryable.
	fx.store.SaveMatchStateFunc = fx.persist
	retry := fx.submit(t, row(10, "Goal", "Smith", ""))
	assert.False(t, retry.Skipped)
	assert.Equal(t, 1, fx.m.HomeScore)
}

func TestCommitFailureRollsBackAndReleases(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	commitErr := errors.New("write locked")
	fx.guard.CommitFunc = func(fingerprint string, outcome *match.Outcome) error {
		return commitErr
	}

	_, err := fx.proc.ProcessRow(context.Background(), testMatchID, row(10, "Goal", "Smith", ""), false)
	require.ErrorIs(t, err, commitErr)
	assert.Zero(t, fx.m.HomeScore, "failed commit must roll back the state write")
	assert.Len(t, fx.guard.ReleaseCalls, 1, "failed commit must release the reservation")
	assert.Len(t, fx.pub.SendMessageCalls, 1, "failed event must not be published")

	// With the reservation released the same row is retryable, not a
	// duplicate.
	fx.guard.CommitFunc = nil
	retry := fx.submit(t, row(10, "Goal", "Smith", ""))
	assert.False(t, retry.Skipped)
	assert.Equal(t, 1, fx.m.HomeScore)
}

func TestLockContention(t *testing.T) {
	fx := newFixture("Smith")

	release, err := fx.locks.Acquire(context.Background(), testMatchID, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = fx.proc.ProcessRow(context.Background(), testMatchID, row(0, "Kickoff", "", ""), false)
	assert.ErrorIs(t, err, match.ErrContention)
	assert.Empty(t, fx.guard.ReserveCalls, "contention must be detected before reserving")
}

func TestValidationFailure(t *testing.T) {
	fx := newFixture("Smith")

	_, err := fx.proc.ProcessRow(context.Background(), testMatchID, ingest.Row{
		ingest.ColMinute: "abc",
		ingest.ColEvent:  "Goal",
		ingest.ColPlayer: "Smith",
	}, false)

	require.Error(t, err)
	assert.True(t, match.IsValidation(err))
	assert.Equal(t, 1, fx.mets.ValidationFailures())
	assert.Empty(t, fx.guard.ReserveCalls)
	assert.Empty(t, fx.store.SaveMatchStateCalls)
}

func TestDryRun(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	out, err := fx.proc.ProcessRow(context.Background(), testMatchID, row(12, "Goal", "Smith", ""), true)
	require.NoError(t, err)
	assert.Equal(t, 1, out.HomeScore)

	assert.Zero(t, fx.m.HomeScore, "dry run must not persist")
	assert.Len(t, fx.guard.ReserveCalls, 1, "only the kickoff reserved")
	assert.Len(t, fx.pub.SendMessageCalls, 1, "dry run must not publish")

	// The real submission afterwards is not treated as a duplicate.
	real := fx.submit(t, row(12, "Goal", "Smith", ""))
	assert.False(t, real.Skipped)
	assert.Equal(t, 1, fx.m.HomeScore)
}

func TestMatchMinutesReadThrough(t *testing.T) {
	fx := newFixture("Smith")
	fx.submit(t, row(0, "Kickoff", "", ""))

	_, err := fx.proc.MatchMinutes(testMatchID)
	require.NoError(t, err)

	loads := fx.loads
	_, err = fx.proc.MatchMinutes(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, loads, fx.loads, "second read must come from cache")

	// Processing another event invalidates the cached minutes.
	fx.submit(t, row(70, "Substitution", "Smith", "Brown"))
	mins, err := fx.proc.MatchMinutes(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, 70, mins["Smith"])
}

func TestFullTimeFlushesSeasonStats(t *testing.T) {
	fx := newFixture("Smith")
	fx.store.GetSeasonStatsFunc = func() ([]club.SeasonStats, error) {
		return []club.SeasonStats{{Player: "Smith", Appearances: 1, Minutes: 90}}, nil
	}

	fx.submit(t, row(0, "Kickoff", "", ""))
	fx.submit(t, row(90, "Full Time", "", ""))

	require.Len(t, fx.store.FlushSeasonStatsCalls, 1)
	assert.Equal(t, testMatchID, fx.store.FlushSeasonStatsCalls[0])

	stats, err := fx.proc.SeasonStats()
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 90, stats[0].Minutes)
}

func TestStatusTransitions(t *testing.T) {
	fx := newFixture("Smith")

	fx.submit(t, row(0, "Kickoff", "", ""))
	assert.Equal(t, match.StatusFirstHalf, fx.m.Status)

	fx.submit(t, row(45, "Half Time", "", ""))
	assert.Equal(t, match.StatusHalfTime, fx.m.Status)

	// Intervals stay open across the break.
	assert.Nil(t, fx.states["Smith"].Intervals[0].End)

	fx.submit(t, row(45, "Second Half", "", ""))
	assert.Equal(t, match.StatusSecondHalf, fx.m.Status)

	fx.submit(t, row(90, "Full Time", "", ""))
	assert.Equal(t, match.StatusFullTime, fx.m.Status)
	assert.Equal(t, 90, fx.m.Clock)
}
