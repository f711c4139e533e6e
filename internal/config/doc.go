// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
Package config provides centralized configuration management for the
learning-loop service.

# Configuration Sources

Three layers, lowest to highest priority: built-in defaults, an optional
config.yaml file, then environment variables.

# Configuration Structure

  - DatabaseConfig: DuckDB registry store path and tuning
  - KVConfig: BadgerDB side-channel (loop_state, loop_config, stats cache)
  - ServerConfig: HTTP listener settings
  - APIConfig: pagination and the discovery-ingestion quota
  - SecurityConfig: CORS and per-IP request rate
  - LoggingConfig: zerolog level/format
  - LoopConfig: Loop Controller tick cadence and backoff
  - BlobConfig: local-disk blob store root
  - NATSConfig: optional watermill/NATS event bridge
  - BackfillConfig: registry backfill/migration tuning

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("listening on %s\n", cfg.Server.Addr())

# Thread Safety

Config is immutable after Load() returns and safe for concurrent reads.
*/
package config
