// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
database_extensions.go - DuckDB Extension Installation

This file installs the DuckDB extensions the registry store needs.

Required Extensions:
  - json: JSON data processing and path-based extraction, used by the
    knowledge-for-creation read queries that filter on sources_json /
    depth_breakdown_json fields.

The json extension is pre-installed in most DuckDB distributions; failure to
install it is non-fatal (spec §4.A graceful table/feature-absence handling) -
JSON columns are still readable/writable as TEXT, just without json_extract.

Installation Strategy:
 1. Try INSTALL <extension>
 2. If install fails, try LOAD <extension> (may already be installed)
 3. If load fails, try FORCE INSTALL <extension>
 4. If all fail, disable the feature gracefully

Environment Variables:
  - DUCKDB_EXTENSION_TIMEOUT: overrides the hard timeout for extension
    operations (e.g. "30s", "1m"); CGO calls don't respect context
    cancellation so timeouts are enforced with a goroutine + select.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chiku524/motionloop/internal/logging"
)

// extensionTimeout is the hard timeout for extension operations.
var extensionTimeout = getExtensionTimeout()

// extensionRetryConfig controls retry behavior for extension operations.
type extensionRetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

// defaultRetryConfig provides sensible defaults for extension loading retries.
var defaultRetryConfig = extensionRetryConfig{
	MaxRetries:  3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
	BackoffMult: 2.0,
}

// getExtensionTimeout returns the timeout for extension operations,
// configurable via DUCKDB_EXTENSION_TIMEOUT.
func getExtensionTimeout() time.Duration {
	if timeoutStr := os.Getenv("DUCKDB_EXTENSION_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

// duckdbVersion is the DuckDB version used for extension paths. Must match
// the duckdb-go-bindings version in go.mod.
const duckdbVersion = "v1.4.3"

// isExtensionInstalledLocally checks if an extension file exists in the
// local DuckDB extension directory, to skip network INSTALL when an
// extension is already pre-installed.
func isExtensionInstalledLocally(extensionName string) bool {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return false
	}

	platform := runtime.GOOS + "_" + runtime.GOARCH
	extPath := filepath.Join(homeDir, ".duckdb", "extensions", duckdbVersion, platform, extensionName+".duckdb_extension")

	_, err = os.Stat(extPath)
	return err == nil
}

// execResult holds the result of an async exec operation.
type execResult struct {
	err error
}

// queryResult holds the result of an async query operation.
type queryResult struct {
	value interface{}
	err   error
}

// execWithHardTimeout executes a SQL statement with a goroutine-based hard
// timeout, since DuckDB CGO calls don't respect context cancellation.
func (db *DB) execWithHardTimeout(query string) error {
	resultCh := make(chan execResult, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		_, err := db.conn.ExecContext(ctx, query)
		resultCh <- execResult{err: err}
	}()

	select {
	case result := <-resultCh:
		return result.err
	case <-time.After(extensionTimeout):
		return fmt.Errorf("operation timed out after %v", extensionTimeout)
	}
}

// queryRowWithHardTimeout executes a query and scans a single value with a
// hard timeout.
func (db *DB) queryRowWithHardTimeout(query string) (interface{}, error) {
	resultCh := make(chan queryResult, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		var result interface{}
		err := db.conn.QueryRowContext(ctx, query).Scan(&result)
		resultCh <- queryResult{value: result, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.value, result.err
	case <-time.After(extensionTimeout):
		return nil, fmt.Errorf("query timed out after %v", extensionTimeout)
	}
}

// execWithRetry executes a SQL statement with retry logic and exponential
// backoff, to absorb transient network failures downloading an extension.
func (db *DB) execWithRetry(query string, config extensionRetryConfig) error {
	var lastErr error
	delay := config.BaseDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("query", query).
				Msg("Retrying extension operation")
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * config.BackoffMult)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := db.execWithHardTimeout(query)
		if err == nil {
			return nil
		}
		lastErr = err

		errStr := err.Error()
		isRetryable := strings.Contains(errStr, "timed out") ||
			strings.Contains(errStr, "timeout") ||
			strings.Contains(errStr, "connection refused") ||
			strings.Contains(errStr, "503") ||
			strings.Contains(errStr, "temporary failure")

		if !isRetryable {
			return err
		}

		logging.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", config.MaxRetries+1).
			Msg("Extension operation failed, will retry")
	}

	return fmt.Errorf("extension operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// installExtensions installs and loads the json extension. Failure is
// non-fatal: JSON columns remain usable as plain TEXT (spec §4.A).
func (db *DB) installExtensions() error {
	if err := db.configureExtensionRepository(); err != nil {
		logging.Warn().Err(err).Msg("Failed to set custom extension repository, will use default")
	}

	return db.installJSON()
}

// configureExtensionRepository sets HTTPS for extension downloads.
func (db *DB) configureExtensionRepository() error {
	return db.execWithHardTimeout("SET custom_extension_repository = 'https://extensions.duckdb.org';")
}

// installJSON installs the json extension, always treated as optional.
func (db *DB) installJSON() error {
	spec := &extensionSpec{
		Name:           "json",
		VerifyQuery:    "SELECT json_extract('{\"name\":\"test\"}', '$.name')::VARCHAR",
		FeatureName:    "json",
		WarningMessage: "JSON extension unavailable, json_extract-based queries will be disabled",
	}
	if err := db.installCoreExtension(spec, true); err != nil {
		return err
	}
	db.jsonAvailable = db.HasFeature("json")
	return nil
}
