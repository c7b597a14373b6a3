package club

import (
	"database/sql"
	"sync"

	"github.com/fcnordhavn/matchday/internal/match"
)

// MockStore is a mock implementation of the ClubStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchFunc            func(m *match.Match, starters []string) error
	GetMatchFunc               func(matchID string) (*match.Match, error)
	GetAllMatchesFunc          func() ([]*match.Match, error)
	GetPlayerStatesFunc        func(matchID string) ([]*match.PlayerMatchState, error)
	SaveMatchStateFunc         func(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error
	FlushSeasonStatsFunc       func(m *match.Match, states []*match.PlayerMatchState) error
	GetSeasonStatsFunc         func() ([]SeasonStats, error)
	GetSeasonStatsByPlayerFunc func(player string) (*SeasonStats, error)

	// Call records
	CreateMatchCalls []struct {
		Match    *match.Match
		Starters []string
	}
	SaveMatchStateCalls []struct {
		Match  *match.Match
		States []*match.PlayerMatchState
	}
	FlushSeasonStatsCalls []string
	ClearCalls            int
	ClearMatchCalls       []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateMatch(mt *match.Match, starters []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, struct {
		Match    *match.Match
		Starters []string
	}{mt, starters})
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(mt, starters)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*match.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &match.Match{ID: matchID}, nil
}

func (m *MockStore) GetAllMatches() ([]*match.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStates(matchID string) ([]*match.PlayerMatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerStatesFunc != nil {
		return m.GetPlayerStatesFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) SaveMatchState(mt *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMatchStateCalls = append(m.SaveMatchStateCalls, struct {
		Match  *match.Match
		States []*match.PlayerMatchState
	}{mt, states})
	if m.SaveMatchStateFunc != nil {
		return m.SaveMatchStateFunc(mt, states, commit)
	}
	if commit != nil {
		return commit(nil)
	}
	return nil
}

func (m *MockStore) FlushSeasonStats(mt *match.Match, states []*match.PlayerMatchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushSeasonStatsCalls = append(m.FlushSeasonStatsCalls, mt.ID)
	if m.FlushSeasonStatsFunc != nil {
		return m.FlushSeasonStatsFunc(mt, states)
	}
	return nil
}

func (m *MockStore) GetSeasonStats() ([]SeasonStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSeasonStatsFunc != nil {
		return m.GetSeasonStatsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetSeasonStatsByPlayer(player string) (*SeasonStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSeasonStatsByPlayerFunc != nil {
		return m.GetSeasonStatsByPlayerFunc(player)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
}
