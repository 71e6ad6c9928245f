// Package config loads runtime settings from environment variables with
// sensible defaults for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port          string
	DBDriver      string
	DatabaseURL   string
	SessionSecret string
	SessionTTL    time.Duration
	FeedLimit     int
}

// Load builds a Config from the environment. SESSION_SECRET is the only
// setting without a default; sessions cannot be signed without it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DatabaseURL:   getenv("DATABASE_URL", "database.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    24 * time.Hour,
		FeedLimit:     20,
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("config: SESSION_SECRET is required")
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return nil, errors.New("config: SESSION_TTL must be a positive duration")
		}
		cfg.SessionTTL = d
	}

	if limit := os.Getenv("FEED_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return nil, errors.New("config: FEED_LIMIT must be a positive integer")
		}
		cfg.FeedLimit = n
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
