// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package database provides the embedded DuckDB registry store for the
// learning loop: job/learning-run/event bookkeeping, the static and blended
// discovery registries, the name reserve, and the narrative/linguistic/
// interpretation tables.
//
// # Architecture
//
// The package is organized into several domain-specific files:
//
// Core Database Operations:
//   - database.go: Core database lifecycle (connection, initialization, cleanup)
//   - database_extensions.go: DuckDB extension installation (json)
//   - database_extensions_core.go: Table-driven extension install/verify helpers
//   - database_schema.go: Table creation and index management
//   - migrations.go: Versioned schema migrations, tracked in schema_migrations
//   - database_connection.go: Connection pool settings and connection-error classification
//   - database_utils.go: Profiling, context management, record counts
//   - errors.go: Close helpers that log or discard close errors
//   - crud.go: Upsert-or-increment CRUD for every registry table
//   - query_helpers.go: Generic query-builder and scan helpers
//
// # Database Technology
//
// The package uses DuckDB as an embedded OLAP store:
//   - CGO-based driver (github.com/duckdb/duckdb-go/v2)
//   - Single-file on-disk database with WAL checkpointing
//   - Prepared statement caching per connection
//
// # Feature Flags
//
// Every table created by database_schema.go is probed after creation and
// recorded in DB.features. Handlers call HasFeature(table) before reading or
// writing an optional table, so a table that failed to migrate cleanly
// degrades (empty reads, skipped writes) instead of panicking.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if db.HasFeature("learned_color") {
//	    rows, err := db.ListBlended(ctx, "learned_color", 50)
//	}
//
// # Concurrency
//
// All exported methods are safe for concurrent use. DuckDB serializes writes
// internally; the registry CRUD layer converts UNIQUE-constraint violations
// on a canonical key into a count increment rather than retrying the insert.
//
// # Error Handling
//
// Errors are wrapped with context using fmt.Errorf with %w. Connection
// errors are not retried and no automatic reconnection takes place; query
// timeouts are enforced via context deadlines.
package database
