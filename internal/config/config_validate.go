// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateKV(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLoop(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required (use ':memory:' for ephemeral storage)")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("DATABASE_THREADS must be at least 1")
	}
	return nil
}

func (c *Config) validateKV() error {
	if c.KV.Dir == "" && !c.KV.InMemory {
		return fmt.Errorf("KV_DIR is required unless KV_IN_MEMORY=true")
	}
	if c.KV.WriteRateLimit <= 0 {
		return fmt.Errorf("KV_WRITE_RATE_LIMIT must be positive")
	}
	if c.KV.StatsCacheTTL <= 0 {
		return fmt.Errorf("KV_STATS_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DiscoveriesPerCommit <= 0 {
		return fmt.Errorf("API_DISCOVERIES_PER_COMMIT must be positive")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && len(c.Security.CORSOrigins) > 1 {
		return fmt.Errorf("SECURITY_CORS_ORIGINS cannot mix '*' with explicit origins")
	}
	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("SECURITY_RATE_LIMIT_REQUESTS must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("SECURITY_RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// hasWildcardCORS reports whether any configured origin is the wildcard.
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateLoop() error {
	if c.Loop.ExploreProbability < 0 || c.Loop.ExploreProbability > 1 {
		return fmt.Errorf("LOOP_EXPLORE_PROBABILITY must be between 0 and 1, got %f", c.Loop.ExploreProbability)
	}
	if c.Loop.TickInterval <= 0 {
		return fmt.Errorf("LOOP_TICK_INTERVAL must be positive")
	}
	if c.Loop.MaxBackoffRetries < 0 {
		return fmt.Errorf("LOOP_MAX_BACKOFF_RETRIES cannot be negative")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required when NATS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "":
		return nil
	default:
		return fmt.Errorf("LOGGING_LEVEL %q is not a recognized level", c.Logging.Level)
	}
}

// IsProduction reports whether CORS is locked down to explicit origins, used
// by callers that want to warn about permissive defaults.
func (c *Config) IsProduction() bool {
	return !c.hasWildcardCORS() && len(c.Security.CORSOrigins) > 0
}
