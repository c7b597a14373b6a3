package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/fcnordhavn/matchday/internal/match"
)

// MatchLocks provides short-lived mutual exclusion scoped per match, so
// concurrent invocations for the same match serialize on the reserve
// step without serializing unrelated matches.
type MatchLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMatchLocks creates an empty lock registry.
func NewMatchLocks() *MatchLocks {
	return &MatchLocks{locks: make(map[string]chan struct{})}
}

func (l *MatchLocks) lockFor(matchID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[matchID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[matchID] = ch
	}
	return ch
}

// Acquire takes the lock for matchID, waiting at most wait. On success
// it returns a release function; otherwise ErrContention, and the
// triggering layer is expected to retry the invocation.
func (l *MatchLocks) Acquire(ctx context.Context, matchID string, wait time.Duration) (func(), error) {
	ch := l.lockFor(matchID)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() { <-ch })
		}
		return release, nil
	case <-timer.C:
		return nil, match.ErrContention
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
