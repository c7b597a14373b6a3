package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	rowsIngested        int
	eventsAccepted      int
	dedupeSkips         int
	validationFailures  int
	lockContention      int
	cacheHits           map[string]int
	cacheMisses         int
	processingDurations []float64
	notifSent           int
	notifFailed         int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		cacheHits:           make(map[string]int),
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRowsIngested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsIngested++
}

func (m *Mock) IncEventsAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsAccepted++
}

func (m *Mock) IncDedupeSkips() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dedupeSkips++
}

func (m *Mock) IncValidationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

func (m *Mock) IncLockContention() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockContention++
}

func (m *Mock) IncCacheHit(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[tier]++
}

func (m *Mock) IncCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// EventsAccepted returns the number of times IncEventsAccepted was called.
func (m *Mock) EventsAccepted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsAccepted
}

// DedupeSkips returns the number of times IncDedupeSkips was called.
func (m *Mock) DedupeSkips() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dedupeSkips
}

// ValidationFailures returns the number of times IncValidationFailures was called.
func (m *Mock) ValidationFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationFailures
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}
