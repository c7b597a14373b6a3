package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	// Optional env var with an explicit default.
	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	getDuration := func(key string, fallback time.Duration) time.Duration {
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Error: Environment variable %s is not a valid duration: %s", key, raw)
		}
		return d
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:     getEnvOr("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnvOr("SLACK_CHANNEL_ID", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID:    getEnv("GCP_PROJECT"),
		PayloadTopic: getEnvOr("PAYLOAD_TOPIC", "match-events"),
		Ingest: IngestConfig{
			OppositionSentinels: splitList(getEnvOr("OPPOSITION_SENTINELS", "Goal,Opposition")),
			LockWait:            getDuration("MATCH_LOCK_WAIT", 3*time.Second),
		},
		Cache: CacheConfig{
			HotTTL:  getDuration("CACHE_HOT_TTL", 30*time.Second),
			WarmTTL: getDuration("CACHE_WARM_TTL", 5*time.Minute),
			ColdTTL: getDuration("CACHE_COLD_TTL", 30*time.Minute),
		},
	}
	return cfg
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
