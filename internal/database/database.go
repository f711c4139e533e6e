// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/logging"
)

// DB wraps the embedded DuckDB registry store.
//
// Features tracks which optional schema capabilities are present, so reads
// and writes against a table that did not migrate cleanly degrade instead of
// panicking (spec §4.A "graceful table-absence handling").
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	featuresMu sync.RWMutex
	features   map[string]bool

	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex

	jsonAvailable bool
}

// New opens the DuckDB file at cfg.Path (creating its parent directory if
// needed), installs the extensions the registry store needs, and creates the
// schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	accessMode := "read_write"
	if cfg.ReadOnly {
		accessMode = "read_only"
	}

	memLimit := fmt.Sprintf("%dMB", cfg.MemoryLimitMB)
	if cfg.MemoryLimitMB <= 0 {
		memLimit = "512MB"
	}

	connStr := fmt.Sprintf("%s?access_mode=%s&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, accessMode, numThreads, memLimit)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:      conn,
		cfg:       cfg,
		features:  make(map[string]bool),
		stmtCache: make(map[string]*sql.Stmt),
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.enableProfiling(); err != nil {
		logging.Warn().Err(err).Msg("Query profiling not enabled")
	}

	return db, nil
}

// IsJSONAvailable returns whether the json extension is loaded.
func (db *DB) IsJSONAvailable() bool {
	return db.jsonAvailable
}

// HasFeature reports whether a named schema capability (e.g. a learned_*
// blend table) came up cleanly during initialize(). Callers in the
// read/discovery path should check this before querying an optional table.
func (db *DB) HasFeature(name string) bool {
	db.featuresMu.RLock()
	defer db.featuresMu.RUnlock()
	return db.features[name]
}

func (db *DB) setFeature(name string, available bool) {
	db.featuresMu.Lock()
	defer db.featuresMu.Unlock()
	db.features[name] = available
}

// Conn returns the underlying SQL database connection, for packages that
// need to run ad hoc queries outside the DB method set.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes every cached prepared statement, checkpoints the WAL, and
// closes the connection.
func (db *DB) Close() error {
	db.stmtCacheMu.Lock()
	for _, stmt := range db.stmtCache {
		if stmt != nil {
			closeWithLog(stmt, nil, "prepared statement")
		}
	}
	db.stmtCache = make(map[string]*sql.Stmt)
	db.stmtCacheMu.Unlock()

	if db.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()

		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// preparedStmt returns a cached *sql.Stmt for query, preparing and caching it
// on first use. Callers must not Close() the returned statement; Close()
// happens centrally in DB.Close().
func (db *DB) preparedStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtCacheMu.RLock()
	stmt, ok := db.stmtCache[query]
	db.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	db.stmtCacheMu.Lock()
	defer db.stmtCacheMu.Unlock()
	if stmt, ok := db.stmtCache[query]; ok {
		return stmt, nil
	}

	limit := db.cfg.StmtCacheSize
	if limit <= 0 {
		limit = 64
	}
	if len(db.stmtCache) >= limit {
		for k, s := range db.stmtCache {
			closeWithLog(s, nil, "evicted prepared statement")
			delete(db.stmtCache, k)
			break
		}
	}

	stmt, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	db.stmtCache[query] = stmt
	return stmt, nil
}

// initialize installs extensions, creates the schema, runs versioned
// migrations, creates indexes, and checkpoints so a fresh WAL replay of
// CREATE TABLE statements involving extension defaults (e.g. ICU timestamps)
// never races process startup.
func (db *DB) initialize() error {
	if err := db.installExtensions(); err != nil {
		return err
	}

	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	checkpointCtx, checkpointCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer checkpointCancel()
	if err := db.Checkpoint(checkpointCtx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}
