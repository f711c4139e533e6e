// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/motionloop/config.yaml",
	"/etc/motionloop/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with sensible defaults for every field.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "./data/registry.duckdb",
			Threads:       4,
			MemoryLimitMB: 512,
			ReadOnly:      false,
			StmtCacheSize: 64,
		},
		KV: KVConfig{
			Dir:               "./data/kv",
			InMemory:          false,
			StatsCacheTTL:     60 * time.Second,
			WriteRateLimit:    1.0,
			WriteBurst:        1,
			GCIntervalSeconds: 600,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize:      50,
			MaxPageSize:          500,
			DiscoveriesPerCommit: 14,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
		Loop: LoopConfig{
			TickInterval:       30 * time.Second,
			ExploreProbability: 0.2,
			JobPollInterval:    2 * time.Second,
			JobPollTimeout:     5 * time.Minute,
			MaxBackoffRetries:  5,
			SelfAPIBaseURL:     "http://127.0.0.1:8080",
		},
		Blob: BlobConfig{
			RootDir: "./data/blobs",
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			StreamName:     "motionloop-events",
			ConnectTimeout: 5 * time.Second,
		},
		Backfill: BackfillConfig{
			WordBoundary: false,
			BatchSize:    500,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: defaults, optional
// config file, then environment variables (highest priority), and validates
// the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, preferring CONFIG_PATH, then the
// default search paths in order.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths that arrive as comma-separated strings
// from the environment but must be unmarshaled as slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields; YAML-sourced values are already slices and are skipped.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths,
// e.g. DATABASE_PATH -> database.path, LOOP_EXPLORE_PROBABILITY ->
// loop.explore_probability. Unmapped keys are skipped so stray environment
// variables never pollute the config tree.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"database_path":            "database.path",
		"database_threads":         "database.threads",
		"database_memory_limit_mb": "database.memory_limit_mb",
		"database_read_only":       "database.read_only",
		"database_stmt_cache_size": "database.stmt_cache_size",

		"kv_dir":                 "kv.dir",
		"kv_in_memory":           "kv.in_memory",
		"kv_stats_cache_ttl":     "kv.stats_cache_ttl",
		"kv_write_rate_limit":    "kv.write_rate_limit",
		"kv_write_burst":         "kv.write_burst",
		"kv_gc_interval_seconds": "kv.gc_interval_seconds",

		"server_host":             "server.host",
		"server_port":             "server.port",
		"server_read_timeout":     "server.read_timeout",
		"server_write_timeout":    "server.write_timeout",
		"server_idle_timeout":     "server.idle_timeout",
		"server_shutdown_timeout": "server.shutdown_timeout",

		"api_default_page_size":      "api.default_page_size",
		"api_max_page_size":          "api.max_page_size",
		"api_discoveries_per_commit": "api.discoveries_per_commit",

		"security_cors_origins":        "security.cors_origins",
		"security_trusted_proxies":     "security.trusted_proxies",
		"security_rate_limit_requests": "security.rate_limit_requests",
		"security_rate_limit_window":   "security.rate_limit_window",

		"logging_level":     "logging.level",
		"logging_format":    "logging.format",
		"logging_caller":    "logging.caller",
		"logging_timestamp": "logging.timestamp",

		"loop_tick_interval":        "loop.tick_interval",
		"loop_explore_probability":  "loop.explore_probability",
		"loop_job_poll_interval":    "loop.job_poll_interval",
		"loop_job_poll_timeout":     "loop.job_poll_timeout",
		"loop_max_backoff_retries":  "loop.max_backoff_retries",
		"loop_self_api_base_url":    "loop.self_api_base_url",

		"blob_root_dir": "blob.root_dir",

		"nats_enabled":         "nats.enabled",
		"nats_url":             "nats.url",
		"nats_stream_name":     "nats.stream_name",
		"nats_connect_timeout": "nats.connect_timeout",

		"backfill_word_boundary": "backfill.word_boundary",
		"backfill_batch_size":    "backfill.batch_size",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// GetKoanfInstance returns a fresh Koanf instance for advanced usage such as
// hot-reload scenarios or custom configuration sources.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
