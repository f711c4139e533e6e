// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
database_schema.go - Database Schema Management

This file manages the DuckDB schema for the registry store: job/learning/event
bookkeeping, the static and blended discovery registries, the name reserve, and
the narrative/linguistic/interpretation tables. Column shapes mirror the row
types in internal/models/job.go and internal/models/registry.go.

Schema Strategy (Pre-Release):
All tables are defined in the initial CREATE TABLE pass below. Post-release
schema changes append versioned migrations in migrations.go rather than
editing this file's history.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/chiku524/motionloop/internal/logging"
	"github.com/chiku524/motionloop/internal/models"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables, then records which tables
// came up cleanly in db.features (spec §4.A graceful table-absence handling,
// §9 "feature-flags map").
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	db.computeFeatureFlags(ctx)

	return nil
}

// requiredTables are the tables whose absence is a hard failure - everything
// the Loop Controller and job lifecycle depend on directly.
var requiredTables = []string{"job", "learning_run", "event"}

// computeFeatureFlags records, for every table this schema creates, whether
// it exists and is queryable. Handlers consult HasFeature instead of probing
// per request.
func (db *DB) computeFeatureFlags(ctx context.Context) {
	for _, table := range allTableNames() {
		var count int
		err := db.conn.QueryRowContext(ctx,
			`SELECT count(*) FROM information_schema.tables WHERE table_name = ?`, table).Scan(&count)
		available := err == nil && count > 0
		db.setFeature(table, available)
		if !available {
			logging.Warn().Str("table", table).Msg("table unavailable; reads will degrade to empty, writes will skip")
		}
	}
}

// allTableNames lists every table getTableCreationQueries attempts to create.
func allTableNames() []string {
	names := []string{
		"job", "learning_run", "event", "feedback", "discovery_run",
		"name_reserve", "static_color", "static_sound", "learned_blend",
		"narrative_entry", "linguistic_variant", "interpretation",
	}
	for _, d := range models.BlendDomains {
		names = append(names, string(d))
	}
	return names
}

// getTableCreationQueries returns the table creation SQL statements.
func (db *DB) getTableCreationQueries() []string {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS learning_run_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS event_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS discovery_run_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS learned_blend_id_seq;`,

		// Job lifecycle (models.JobStatus): pending -> completed | failed.
		`CREATE TABLE IF NOT EXISTS job (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			duration_seconds DOUBLE,
			status TEXT NOT NULL DEFAULT 'pending',
			r2_key TEXT,
			workflow_type TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// One row per committed learning run; job_id nullable (a run may be
		// recorded without a job in backfill/replay scenarios).
		`CREATE TABLE IF NOT EXISTS learning_run (
			id BIGINT PRIMARY KEY DEFAULT nextval('learning_run_id_seq'),
			job_id TEXT,
			prompt TEXT NOT NULL,
			spec TEXT,
			analysis TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Append-only diagnostic event log (models.EventType enum).
		`CREATE TABLE IF NOT EXISTS event (
			id BIGINT PRIMARY KEY DEFAULT nextval('event_id_seq'),
			event_type TEXT NOT NULL,
			job_id TEXT,
			payload TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Upsert-on-job_id feedback (rating 1|2).
		`CREATE TABLE IF NOT EXISTS feedback (
			job_id TEXT PRIMARY KEY,
			rating INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// One row per discoveries-ingestion attempt, even when results sum to
		// zero, so diagnostics can distinguish "attempted" from "never tried".
		`CREATE TABLE IF NOT EXISTS discovery_run (
			id BIGINT PRIMARY KEY DEFAULT nextval('discovery_run_id_seq'),
			job_id TEXT,
			results_json TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Every name ever allocated by the name allocator; first-writer-wins.
		`CREATE TABLE IF NOT EXISTS name_reserve (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Per-frame color discoveries, canonical key "r,g,b".
		`CREATE TABLE IF NOT EXISTS static_color (
			canonical_key TEXT PRIMARY KEY,
			r INTEGER NOT NULL,
			g INTEGER NOT NULL,
			b INTEGER NOT NULL,
			count INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			depth_breakdown_json TEXT,
			opacity_pct DOUBLE,
			theme_breakdown_json TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Per-sample sound discoveries, canonical key "<strength>_<tone>_<timbre>".
		`CREATE TABLE IF NOT EXISTS static_sound (
			canonical_key TEXT PRIMARY KEY,
			amplitude DOUBLE,
			strength_pct DOUBLE,
			tone TEXT,
			timbre TEXT,
			count INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			depth_breakdown_json TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Uncategorized fallback: always inserted, never deduplicated.
		`CREATE TABLE IF NOT EXISTS learned_blend (
			id BIGINT PRIMARY KEY DEFAULT nextval('learned_blend_id_seq'),
			name TEXT NOT NULL,
			domain TEXT NOT NULL,
			inputs_json TEXT,
			output_json TEXT,
			primitive_depths_json TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Semantic registry rows keyed by (aspect, entry_key).
		`CREATE TABLE IF NOT EXISTS narrative_entry (
			aspect TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			value TEXT NOT NULL,
			name TEXT,
			count INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (aspect, entry_key)
		);`,

		// Surface-span -> canonical-form map, unique on (span, domain).
		`CREATE TABLE IF NOT EXISTS linguistic_variant (
			span TEXT NOT NULL,
			canonical TEXT NOT NULL,
			domain TEXT NOT NULL,
			variant_type TEXT,
			count INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (span, domain)
		);`,

		// Queued prompts awaiting a worker-supplied instruction.
		`CREATE TABLE IF NOT EXISTS interpretation (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			instruction TEXT,
			source TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, domain := range models.BlendDomains {
		queries = append(queries, blendedTableDDL(string(domain)))
	}

	return queries
}

// blendedTableDDL builds the shared BlendedRow shape (models.BlendedRow) for
// one of the thirteen learned_* domain tables.
func blendedTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		profile_key TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		sources_json TEXT,
		name TEXT NOT NULL,
		depth_breakdown_json TEXT,
		motion_level DOUBLE,
		motion_std DOUBLE,
		motion_trend TEXT,
		direction TEXT,
		rhythm TEXT,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`, table)
}

// createIndexes creates the indexes the hot paths (discovery ingestion,
// pending-job polling, registry listing) depend on.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

func (db *DB) getIndexQueries() []string {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_job_status_created ON job(status, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_job_status_updated ON job(status, updated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_learning_run_job_id ON learning_run(job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_learning_run_created ON learning_run(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_event_type_created ON event(event_type, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_run_job_id ON discovery_run(job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_narrative_aspect ON narrative_entry(aspect);`,
		`CREATE INDEX IF NOT EXISTS idx_interpretation_status_source ON interpretation(status, source, created_at);`,
	}
	for _, domain := range models.BlendDomains {
		queries = append(queries, fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_count ON %s(count DESC);`, domain, domain))
	}
	return queries
}
