package notifier

import (
	"sync"

	"github.com/fcnordhavn/matchday/internal/payload"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendEventNotificationFunc func(p payload.Payload, dryRun bool) (string, error)

	// Call records
	SendEventNotificationCalls []payload.Payload
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendEventNotificationCalls = nil
}

func (m *Mock) SendEventNotification(p payload.Payload, dryRun bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendEventNotificationCalls = append(m.SendEventNotificationCalls, p)
	if m.SendEventNotificationFunc != nil {
		return m.SendEventNotificationFunc(p, dryRun)
	}
	return "mock-ts", nil
}
