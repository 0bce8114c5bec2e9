// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and configures the cache backend.
type Config struct {
	// Backend is "memory" or "redis".
	Backend string

	// RedisURL is the connection URL when Backend is "redis".
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string

	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration

	// CleanupInterval is the expired-entry sweep interval for the memory backend.
	CleanupInterval time.Duration
}

// DefaultConfig returns the memory backend with an hour TTL.
func DefaultConfig() Config {
	return Config{
		Backend:         "memory",
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	}
}

// New creates a Cacher for the configured backend.
func New(cfg Config) (Cacher, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(MemoryCacheOptions{
			DefaultTTL:      cfg.DefaultTTL,
			CleanupInterval: cfg.CleanupInterval,
		}), nil
	case "redis":
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		return NewRedisCache(opts)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
