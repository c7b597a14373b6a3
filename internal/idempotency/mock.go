package idempotency

import (
	"context"
	"database/sql"
	"sync"

	"github.com/fcnordhavn/matchday/internal/match"
)

// MockStore is an in-memory Store implementation for testing. It is
// safe for concurrent use.
type MockStore struct {
	mu       sync.Mutex
	reserved map[string]string         // fingerprint -> matchID
	outcomes map[string]*match.Outcome // committed fingerprints

	// Spies
	ReserveFunc func(fingerprint, matchID string) (bool, *match.Outcome, error)
	CommitFunc  func(fingerprint string, outcome *match.Outcome) error
	ReleaseFunc func(fingerprint string) error

	// Call records
	ReserveCalls []string
	CommitCalls  []string
	ReleaseCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		reserved: make(map[string]string),
		outcomes: make(map[string]*match.Outcome),
	}
}

func (m *MockStore) Reserve(_ context.Context, fingerprint, matchID string) (bool, *match.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReserveCalls = append(m.ReserveCalls, fingerprint)
	if m.ReserveFunc != nil {
		return m.ReserveFunc(fingerprint, matchID)
	}
	if prior, ok := m.outcomes[fingerprint]; ok {
		return false, prior, nil
	}
	if _, ok := m.reserved[fingerprint]; ok {
		return false, nil, nil
	}
	m.reserved[fingerprint] = matchID
	return true, nil, nil
}

func (m *MockStore) Commit(_ context.Context, _ *sql.Tx, fingerprint string, outcome *match.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCalls = append(m.CommitCalls, fingerprint)
	if m.CommitFunc != nil {
		return m.CommitFunc(fingerprint, outcome)
	}
	delete(m.reserved, fingerprint)
	m.outcomes[fingerprint] = outcome
	return nil
}

func (m *MockStore) Release(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls = append(m.ReleaseCalls, fingerprint)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(fingerprint)
	}
	delete(m.reserved, fingerprint)
	return nil
}
