// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chiku524/motionloop/internal/models"
)

// ListLinguisticVariants returns every surface-span mapping, highest count
// first, for the registries view's "linguistic" section.
func (db *DB) ListLinguisticVariants(ctx context.Context, limit int) ([]*models.LinguisticVariant, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT span, canonical, domain, variant_type, count, updated_at
		FROM linguistic_variant ORDER BY count DESC LIMIT ?`
	return queryAndScan(ctx, db.conn, query, []interface{}{normalizeLimit(limit, 50, 1000)}, scanLinguisticVariant)
}

func scanLinguisticVariant(rows *sql.Rows) (*models.LinguisticVariant, error) {
	var row models.LinguisticVariant
	if err := rows.Scan(&row.Span, &row.Canonical, &row.Domain, &row.VariantType, &row.Count, &row.UpdatedAt); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListStaticSound returns static sound discoveries, highest count first.
func (db *DB) ListStaticSound(ctx context.Context, limit int) ([]*models.StaticSound, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT canonical_key, amplitude, strength_pct, tone, timbre, count, name, depth_breakdown_json, updated_at
		FROM static_sound ORDER BY count DESC LIMIT ?`
	return queryAndScan(ctx, db.conn, query, []interface{}{normalizeLimit(limit, 50, 1000)}, scanStaticSound)
}

func scanStaticSound(rows *sql.Rows) (*models.StaticSound, error) {
	var row models.StaticSound
	var depthJSON sql.NullString
	if err := rows.Scan(&row.Key, &row.Amplitude, &row.StrengthPct, &row.Tone, &row.Timbre,
		&row.Count, &row.Name, &depthJSON, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.DepthBreakdown = decodeFloatMap(depthJSON.String)
	return &row, nil
}

// ListInterpretationPrompts returns the most recent interpretation prompts
// (any status), newest first, for the creation-side knowledge view.
func (db *DB) ListInterpretationPrompts(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT prompt FROM interpretation ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit, 100, 500))
	if err != nil {
		return nil, fmt.Errorf("failed to list interpretation prompts: %w", err)
	}
	defer rows.Close()

	prompts := make([]string, 0, limit)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan interpretation prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// ListLearnedBlends returns the most recent uncategorized fallback blends,
// optionally filtered to a single domain tag (empty matches every domain).
func (db *DB) ListLearnedBlends(ctx context.Context, domain string, limit int) ([]*models.LearnedBlend, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, name, domain, inputs_json, output_json, primitive_depths_json, created_at
		FROM learned_blend`
	args := []interface{}{}
	if domain != "" {
		query += ` WHERE domain = ?`
		args = append(args, domain)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, normalizeLimit(limit, 50, 1000))

	return queryAndScan(ctx, db.conn, query, args, scanLearnedBlend)
}

func scanLearnedBlend(rows *sql.Rows) (*models.LearnedBlend, error) {
	var row models.LearnedBlend
	var primitiveDepths sql.NullString
	if err := rows.Scan(&row.ID, &row.Name, &row.Domain, &row.InputsJSON, &row.OutputJSON, &primitiveDepths, &row.CreatedAt); err != nil {
		return nil, err
	}
	row.PrimitiveDepthsJS = primitiveDepths.String
	return &row, nil
}

// ListLearningRuns returns the most recent learning runs, newest first.
func (db *DB) ListLearningRuns(ctx context.Context, limit int) ([]*models.LearningRun, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, job_id, prompt, spec, analysis, created_at
		FROM learning_run ORDER BY created_at DESC LIMIT ?`
	return queryAndScan(ctx, db.conn, query, []interface{}{normalizeLimit(limit, 100, 500)}, scanLearningRun)
}

func scanLearningRun(rows *sql.Rows) (*models.LearningRun, error) {
	var run models.LearningRun
	if err := rows.Scan(&run.ID, &run.JobID, &run.Prompt, &run.Spec, &run.Analysis, &run.CreatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListEvents returns the most recent events, optionally filtered by type.
func (db *DB) ListEvents(ctx context.Context, eventType string, limit int) ([]*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, event_type, job_id, payload, created_at FROM event`
	args := []interface{}{}
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, normalizeLimit(limit, 100, 1000))
	return queryAndScan(ctx, db.conn, query, args, scanEvent)
}

func scanEvent(rows *sql.Rows) (*models.Event, error) {
	var ev models.Event
	var payload sql.NullString
	if err := rows.Scan(&ev.ID, &ev.EventType, &ev.JobID, &payload, &ev.CreatedAt); err != nil {
		return nil, err
	}
	ev.Payload = payload.String
	return &ev, nil
}

// ListRecentCompletedJobs returns the most recently updated completed jobs.
func (db *DB) ListRecentCompletedJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT id, prompt, duration_seconds, status, r2_key, workflow_type, created_at, updated_at
		FROM job WHERE status = ? ORDER BY updated_at DESC LIMIT ?`
	return queryAndScan(ctx, db.conn, query, []interface{}{models.JobCompleted, normalizeLimit(limit, 20, 1000)}, scanJob)
}

// JobsWithLearningRuns reports, for the given job ids, which have at least
// one learning_run row.
func (db *DB) JobsWithLearningRuns(ctx context.Context, jobIDs []string) (map[string]bool, error) {
	return db.jobIDPresence(ctx, "learning_run", jobIDs)
}

// JobsWithDiscoveryRuns reports, for the given job ids, which have at least
// one discovery_run row.
func (db *DB) JobsWithDiscoveryRuns(ctx context.Context, jobIDs []string) (map[string]bool, error) {
	return db.jobIDPresence(ctx, "discovery_run", jobIDs)
}

func (db *DB) jobIDPresence(ctx context.Context, table string, jobIDs []string) (map[string]bool, error) {
	present := make(map[string]bool, len(jobIDs))
	if len(jobIDs) == 0 {
		return present, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := make([]interface{}, len(jobIDs))
	qmarks := ""
	for i, id := range jobIDs {
		placeholders[i] = id
		if i > 0 {
			qmarks += ","
		}
		qmarks += "?"
	}

	query := fmt.Sprintf(`SELECT DISTINCT job_id FROM %s WHERE job_id IN (%s)`, table, qmarks) //nolint:gosec // table is a fixed literal passed by callers in this file
	rows, err := db.conn.QueryContext(ctx, query, placeholders...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s presence: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID sql.NullString
		if err := rows.Scan(&jobID); err != nil {
			return nil, fmt.Errorf("failed to scan %s presence row: %w", table, err)
		}
		if jobID.Valid {
			present[jobID.String] = true
		}
	}
	return present, rows.Err()
}

// CountRows returns the row count of table. table must be one of the
// registry store's own fixed table names — never derived from request input.
func (db *DB) CountRows(ctx context.Context, table string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table) //nolint:gosec // table is a fixed literal passed by callers in this file
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// TopNCountSum sums the count column of table's top-N rows by count
// descending (used for the repetition score, spec §4.F).
func (db *DB) TopNCountSum(ctx context.Context, table string, n int) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT COALESCE(SUM(count), 0) FROM (
		SELECT count FROM %s ORDER BY count DESC LIMIT ?
	) t`, table) //nolint:gosec // table is a fixed literal passed by callers in this file
	var sum int
	if err := db.conn.QueryRowContext(ctx, query, n).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum top-%d %s: %w", n, table, err)
	}
	return sum, nil
}

// NarrativeCoverageCounts returns the distinct entry_key count discovered so
// far for every narrative aspect, for coverage reporting against the fixed
// origin sizes (spec §4.F "Coverage").
func (db *DB) NarrativeCoverageCounts(ctx context.Context) (map[models.NarrativeAspect]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	counts := make(map[models.NarrativeAspect]int, len(models.NarrativeOriginSizes))
	rows, err := db.conn.QueryContext(ctx, `SELECT aspect, COUNT(DISTINCT entry_key) FROM narrative_entry GROUP BY aspect`)
	if err != nil {
		return nil, fmt.Errorf("failed to count narrative coverage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var aspect string
		var count int
		if err := rows.Scan(&aspect, &count); err != nil {
			return nil, fmt.Errorf("failed to scan narrative coverage row: %w", err)
		}
		counts[models.NarrativeAspect(aspect)] = count
	}
	return counts, rows.Err()
}

// StaticSoundPrimitivePresent reports, for each of the 4 fixed sound
// primaries, whether any discovered static_sound row's tone or timbre
// matches it.
func (db *DB) StaticSoundPrimitivePresent(ctx context.Context) (map[string]bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	present := make(map[string]bool, len(models.SoundPrimitives))
	for _, p := range models.SoundPrimitives {
		present[p] = false
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT tone FROM static_sound
		UNION SELECT DISTINCT timbre FROM static_sound`)
	if err != nil {
		return nil, fmt.Errorf("failed to query static sound presence: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var val sql.NullString
		if err := rows.Scan(&val); err != nil {
			return nil, fmt.Errorf("failed to scan static sound presence row: %w", err)
		}
		if _, ok := present[val.String]; ok {
			present[val.String] = true
		}
	}
	return present, rows.Err()
}

// UpdateDepthBreakdown overwrites table's depth_breakdown_json column for
// the row identified by id, for the backfill-depths endpoint's externally
// recomputed breakdowns (spec §4.G).
func (db *DB) UpdateDepthBreakdown(ctx context.Context, table, id, depthBreakdownJSON string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	pkColumn := "profile_key"
	depthColumn := "depth_breakdown_json"
	switch table {
	case "static_color", "static_sound":
		pkColumn = "canonical_key"
	case "learned_blend":
		pkColumn = "id"
		depthColumn = "primitive_depths_json"
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, table, depthColumn, pkColumn) //nolint:gosec // table/column are fixed literals passed by callers in this file
	res, err := db.conn.ExecContext(ctx, query, depthBreakdownJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update depth breakdown in %s: %w", table, err)
	}
	return requireAffected(res, "row not found")
}

// DistinctNames returns every distinct non-empty value of table's name
// column, for the backfill-names scan to test against the gibberish
// detector in Go before re-querying for the matching rows.
func (db *DB) DistinctNames(ctx context.Context, table string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT DISTINCT name FROM %s WHERE name IS NOT NULL AND name <> ''`, table) //nolint:gosec // table is a fixed literal passed by callers in this file
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct names in %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan name in %s: %w", table, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// GibberishCandidates returns up to limit (name, pk) pairs from table whose
// name column looks gibberish, for the backfill-names scan. pkColumn names
// the table's primary/unique identifying column returned alongside name.
func (db *DB) GibberishCandidates(ctx context.Context, table, pkColumn string, names []string, limit int) ([]BackfillCandidate, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if len(names) == 0 {
		return nil, nil
	}
	placeholders := ""
	args := make([]interface{}, 0, len(names)+1)
	for i, n := range names {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, n)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s, name FROM %s WHERE name IN (%s) LIMIT ?`, pkColumn, table, placeholders) //nolint:gosec // table/pkColumn are fixed literals passed by callers in this file
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for gibberish names: %w", table, err)
	}
	defer rows.Close()

	var out []BackfillCandidate
	for rows.Next() {
		var c BackfillCandidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan gibberish candidate: %w", err)
		}
		c.Table = table
		out = append(out, c)
	}
	return out, rows.Err()
}

// BackfillCandidate is a single row found by a gibberish-name scan.
type BackfillCandidate struct {
	Table string
	ID    string
	Name  string
}

// RenameInTable updates table's name column for the row identified by
// pkColumn=id.
func (db *DB) RenameInTable(ctx context.Context, table, pkColumn, id, oldName, newName string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE %s SET name = ? WHERE %s = ? AND name = ?`, table, pkColumn) //nolint:gosec // table/pkColumn are fixed literals passed by callers in this file
	_, err := db.conn.ExecContext(ctx, query, newName, id, oldName)
	if err != nil {
		return fmt.Errorf("failed to rename in %s: %w", table, err)
	}
	return nil
}

// CascadeRenameColumn replaces oldName with newName anywhere it appears as a
// substring of column in table (spec §4.D backfill cascade: prompts,
// source_prompt, sources_json, inputs_json, output_json,
// primitive_depths_json, instruction_json). Uses LIKE/REPLACE per spec §9 —
// the substring-match behavior is an explicit, recorded open question, not an
// oversight (see DESIGN.md).
func (db *DB) CascadeRenameColumn(ctx context.Context, table, column, oldName, newName string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE %s SET %s = REPLACE(%s, ?, ?) WHERE %s LIKE '%%' || ? || '%%' ESCAPE '\'`, //nolint:gosec // table/column are fixed literals passed by callers in this file
		table, column, column, column)
	result, err := db.conn.ExecContext(ctx, query, oldName, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("failed to cascade rename in %s.%s: %w", table, column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get cascade rename affected rows: %w", err)
	}
	return affected, nil
}

// CanonicalKeyExists reports whether key already has a row in table under
// keyColumn, so callers can decide whether a discovery item needs a freshly
// allocated name before upserting (spec §4.D point 2).
func (db *DB) CanonicalKeyExists(ctx context.Context, table, keyColumn, key string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, keyColumn) //nolint:gosec // table/keyColumn are fixed literals passed by callers in this file
	if err := db.conn.QueryRowContext(ctx, query, key).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return count > 0, nil
}

// TableExists reports whether table is a recognized feature (delegates to
// the startup feature-flags map, spec §9 "Graceful table absence").
func (db *DB) TableExists(table string) bool {
	return db.HasFeature(table)
}

// NextPendingInterpretationAny returns the oldest pending interpretation
// across all sources, prioritizing web-submitted prompts ahead of
// worker/loop/backfill-submitted ones (spec §4.D "web > others").
func (db *DB) NextPendingInterpretationAny(ctx context.Context) (*models.Interpretation, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT id, prompt, instruction, source, status, created_at, updated_at
		FROM interpretation WHERE status = ?
		ORDER BY CASE WHEN source = ? THEN 0 ELSE 1 END, created_at ASC LIMIT 1`,
		models.InterpretationPending, models.SourceWeb)

	var it models.Interpretation
	var instruction sql.NullString
	err := row.Scan(&it.ID, &it.Prompt, &instruction, &it.Source, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next pending interpretation: %w", err)
	}
	if instruction.Valid {
		it.Instruction = &instruction.String
	}
	return &it, nil
}
