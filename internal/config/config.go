// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package config holds all application configuration loaded from environment
// variables and an optional config file. Loading order (Koanf v2):
//
//  1. Defaults: built-in sensible defaults for every field
//  2. Config File: optional YAML file (config.yaml) for persistent settings
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config aggregates every sub-configuration the server needs to boot.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	KV       KVConfig       `koanf:"kv"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Loop     LoopConfig     `koanf:"loop"`
	Blob     BlobConfig     `koanf:"blob"`
	NATS     NATSConfig     `koanf:"nats"` // Optional: watermill/NATS event bridge
	Backfill BackfillConfig `koanf:"backfill"`
}

// DatabaseConfig configures the embedded DuckDB registry store.
type DatabaseConfig struct {
	Path           string `koanf:"path"`             // file path, or ":memory:" for an in-memory instance
	Threads        int    `koanf:"threads"`          // PRAGMA threads
	MemoryLimitMB  int    `koanf:"memory_limit_mb"`  // PRAGMA memory_limit
	ReadOnly       bool   `koanf:"read_only"`
	StmtCacheSize  int    `koanf:"stmt_cache_size"`  // prepared-statement cache capacity
}

// KVConfig configures the BadgerDB side-channel used for loop_state, loop_config,
// and the learning:stats cache.
type KVConfig struct {
	Dir               string        `koanf:"dir"`
	InMemory          bool          `koanf:"in_memory"`
	StatsCacheTTL     time.Duration `koanf:"stats_cache_ttl"`     // default 60s
	WriteRateLimit    float64       `koanf:"write_rate_limit"`    // writes/sec/key, default 1.0
	WriteBurst        int           `koanf:"write_burst"`         // default 1
	GCIntervalSeconds int           `koanf:"gc_interval_seconds"` // value log GC cadence
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port the HTTP server should bind to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig bounds pagination, quotas, and response shaping for the Ingestion API.
type APIConfig struct {
	DefaultPageSize      int `koanf:"default_page_size"`
	MaxPageSize          int `koanf:"max_page_size"`
	DiscoveriesPerCommit int `koanf:"discoveries_per_commit"` // validated only; the discoveries handler applies its own fixed 14-item cap
}

// SecurityConfig configures CORS and the per-IP request-rate layer in front of
// the in-handler discovery quota. No auth/authz is in scope for this service;
// authentication is an external collaborator per spec §1.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the zerolog-backed logger.
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"` // "json" or "console"
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// LoopConfig provides the Loop Controller's boot-time defaults; the live,
// mutable copy lives in loop_config (KV side-channel) and is refreshed every
// tick per spec §4.E.
type LoopConfig struct {
	TickInterval       time.Duration `koanf:"tick_interval"`
	ExploreProbability float64       `koanf:"explore_probability"`
	JobPollInterval    time.Duration `koanf:"job_poll_interval"`
	JobPollTimeout     time.Duration `koanf:"job_poll_timeout"`
	MaxBackoffRetries  int           `koanf:"max_backoff_retries"`
	SelfAPIBaseURL     string        `koanf:"self_api_base_url"`
}

// BlobConfig configures the local-disk implementation of the external blob
// store interface (put/get), keyed as jobs/<id>/video.mp4 per spec §6.
type BlobConfig struct {
	RootDir string `koanf:"root_dir"`
}

// NATSConfig configures the optional watermill event bridge. When Enabled is
// false (the default), the in-process gochannel pub/sub is used instead and
// none of these fields matter.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	StreamName     string        `koanf:"stream_name"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// BackfillConfig tunes the registry Backfill/Migration surface.
type BackfillConfig struct {
	WordBoundary bool `koanf:"word_boundary"` // read by no code: cascade rename always uses substring matching; see DESIGN.md Open Question
	BatchSize    int  `koanf:"batch_size"`
}

// Load reads configuration via LoadWithKoanf (defaults -> file -> env) and
// validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
