// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"LINGOPACK_DB_PATH" envDefault:"./data/lingopack.db"`
	ServerHost string `env:"LINGOPACK_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"LINGOPACK_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"LINGOPACK_ENV" envDefault:"development"`
	LogLevel   string `env:"LINGOPACK_LOG_LEVEL" envDefault:"info"`
	ExportDir  string `env:"LINGOPACK_EXPORT_DIR" envDefault:"./exports"`

	// API tokens are bcrypt hashes; requests present the plain token as a
	// bearer credential. Empty disables authentication (development only).
	APITokenHash string `env:"LINGOPACK_API_TOKEN_HASH"`

	// APIRateLimit is the per-client request budget per minute.
	APIRateLimit int `env:"LINGOPACK_API_RATE_LIMIT" envDefault:"120"`

	// Engine configuration
	ParallelBatches int `env:"LINGOPACK_PARALLEL_BATCHES" envDefault:"4"`
	UnitsPerBatch   int `env:"LINGOPACK_UNITS_PER_BATCH" envDefault:"0"` // 0 = engine default
	EventRetention  int `env:"LINGOPACK_EVENT_RETENTION_DAYS" envDefault:"30"`

	// Provider configuration
	OpenAIAPIKey string  `env:"LINGOPACK_OPENAI_API_KEY"`
	OpenAIModel  string  `env:"LINGOPACK_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIRPS    float64 `env:"LINGOPACK_OPENAI_RPS" envDefault:"2"`

	// Cache configuration
	RedisURL    string `env:"LINGOPACK_REDIS_URL"` // optional Redis URL for a shared cache
	CachePrefix string `env:"LINGOPACK_CACHE_PREFIX" envDefault:"lingopack:"`
	CacheTTL    int    `env:"LINGOPACK_CACHE_TTL" envDefault:"3600"` // seconds
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// OpenAIEnabled returns true if the OpenAI provider is configured.
func (c Config) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// AuthEnabled returns true if API token authentication is configured.
func (c Config) AuthEnabled() bool {
	return c.APITokenHash != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// EventRetentionDuration returns the event retention window as a duration.
func (c Config) EventRetentionDuration() time.Duration {
	return time.Duration(c.EventRetention) * 24 * time.Hour
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ParallelBatches < 1 {
		return nil, fmt.Errorf("LINGOPACK_PARALLEL_BATCHES must be at least 1, got %d", cfg.ParallelBatches)
	}
	if cfg.UnitsPerBatch < 0 {
		return nil, fmt.Errorf("LINGOPACK_UNITS_PER_BATCH must not be negative, got %d", cfg.UnitsPerBatch)
	}
	if cfg.EventRetention < 1 {
		return nil, fmt.Errorf("LINGOPACK_EVENT_RETENTION_DAYS must be at least 1, got %d", cfg.EventRetention)
	}

	return cfg, nil
}
