package processor

import (
	"context"
	"sync"

	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/ingest"
	"github.com/fcnordhavn/matchday/internal/match"
)

// Mock is a mock implementation of the EventProcessor interface for
// testing. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	ProcessRowFunc   func(ctx context.Context, matchID string, row ingest.Row, dryRun bool) (*match.Outcome, error)
	MatchMinutesFunc func(matchID string) (map[string]int, error)
	SeasonStatsFunc  func() ([]club.SeasonStats, error)

	// Call records
	ProcessRowCalls []ProcessRowCall
}

// ProcessRowCall holds the arguments for a call to ProcessRow.
type ProcessRowCall struct {
	MatchID string
	Row     ingest.Row
	DryRun  bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessRowCalls = nil
}

func (m *Mock) ProcessRow(ctx context.Context, matchID string, row ingest.Row, dryRun bool) (*match.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessRowCalls = append(m.ProcessRowCalls, ProcessRowCall{MatchID: matchID, Row: row, DryRun: dryRun})
	if m.ProcessRowFunc != nil {
		return m.ProcessRowFunc(ctx, matchID, row, dryRun)
	}
	return &match.Outcome{}, nil
}

func (m *Mock) MatchMinutes(matchID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MatchMinutesFunc != nil {
		return m.MatchMinutesFunc(matchID)
	}
	return map[string]int{}, nil
}

func (m *Mock) SeasonStats() ([]club.SeasonStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeasonStatsFunc != nil {
		return m.SeasonStatsFunc()
	}
	return nil, nil
}
