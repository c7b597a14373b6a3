package config

import "time"

// Config holds all configuration for the application. Every recognized
// key is enumerated here with an explicit default; there is no dynamic
// property lookup.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	PayloadTopic  string
	Ingest        IngestConfig
	Cache         CacheConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// IngestConfig controls event classification and lock behavior.
type IngestConfig struct {
	// OppositionSentinels are player values that mark an event as
	// belonging to the opposition (e.g. "Goal" on goal rows,
	// "Opposition" on card rows).
	OppositionSentinels []string
	// LockWait bounds how long an invocation waits for the per-match
	// lock before failing with a contention error.
	LockWait time.Duration
}

// CacheConfig holds the TTL per cache tier.
type CacheConfig struct {
	HotTTL  time.Duration
	WarmTTL time.Duration
	ColdTTL time.Duration
}
