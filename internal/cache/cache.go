// Package cache provides the tiered read-through/write-through cache for
// derived aggregates. Correctness never depends on cache freshness; the
// authoritative state always lives in the club store, so every operation
// here fails open.
package cache

import (
	"sync"
	"time"
)

// Tier identifies a cache bucket by volatility. Lower tiers are faster
// and shorter lived.
type Tier string

const (
	TierHot  Tier = "hot"  // request-scope values, e.g. current scoreline
	TierWarm Tier = "warm" // live-match aggregates, e.g. player minutes
	TierCold Tier = "cold" // slow-changing derived data, e.g. season stats
)

// Category is a declared key category. Tier selection is deterministic
// from the category, never guessed from value size.
type Category string

const (
	CategoryScoreline       Category = "scoreline"
	CategoryMatchAggregates Category = "match_aggregates"
	CategorySeasonStats     Category = "season_stats"
)

// TierFor maps a key category to its tier.
func TierFor(c Category) Tier {
	switch c {
	case CategoryScoreline:
		return TierHot
	case CategoryMatchAggregates:
		return TierWarm
	case CategorySeasonStats:
		return TierCold
	}
	return TierWarm
}

type entry struct {
	value     any
	expiresAt time.Time
}

type tierStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

func newTierStore(ttl time.Duration) *tierStore {
	return &tierStore{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

func (s *tierStore) get(key string, now time.Time) (any, time.Duration, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, 0, false
	}
	if !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, 0, false
	}
	return e.value, e.expiresAt.Sub(now), true
}

func (s *tierStore) set(key string, value any, now time.Time) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
}

func (s *tierStore) holds(key string, now time.Time) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	return ok && e.expiresAt.After(now)
}

func (s *tierStore) delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Manager coordinates the three tiers. Reads check hot first, then
// warm, then cold.
type Manager struct {
	hot  *tierStore
	warm *tierStore
	cold *tierStore
	now  func() time.Time
}

// New creates a Manager with the given per-tier TTLs.
func New(hotTTL, warmTTL, coldTTL time.Duration) *Manager {
	return &Manager{
		hot:  newTierStore(hotTTL),
		warm: newTierStore(warmTTL),
		cold: newTierStore(coldTTL),
		now:  time.Now,
	}
}

func (m *Manager) store(t Tier) *tierStore {
	switch t {
	case TierHot:
		return m.hot
	case TierCold:
		return m.cold
	}
	return m.warm
}

// Get returns the cached value, its remaining validity and the tier it
// was found in, or a miss.
func (m *Manager) Get(key string) (any, time.Duration, Tier, bool) {
	now := m.now()
	for _, t := range []Tier{TierHot, TierWarm, TierCold} {
		if v, remaining, ok := m.store(t).get(key, now); ok {
			return v, remaining, t, true
		}
	}
	return nil, 0, "", false
}

// Set writes through to the chosen tier and refreshes any lower
// (faster) tier currently holding the key, so a stale fast copy never
// outlives a slower write.
func (m *Manager) Set(key string, value any, tier Tier) {
	now := m.now()
	m.store(tier).set(key, value, now)
	for _, lower := range lowerTiers(tier) {
		if s := m.store(lower); s.holds(key, now) {
			s.set(key, value, now)
		}
	}
}

// Invalidate removes the key from all tiers synchronously.
func (m *Manager) Invalidate(key string) {
	m.hot.delete(key)
	m.warm.delete(key)
	m.cold.delete(key)
}

func lowerTiers(t Tier) []Tier {
	switch t {
	case TierCold:
		return []Tier{TierWarm, TierHot}
	case TierWarm:
		return []Tier{TierHot}
	}
	return nil
}
