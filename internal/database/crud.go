// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chiku524/motionloop/internal/logging"
	"github.com/chiku524/motionloop/internal/models"
)

// withConflictRetry runs fn, retrying with exponential backoff when DuckDB
// reports a transaction conflict from concurrent writers racing the same
// canonical key. INTERNAL errors are fatal and never retried.
func withConflictRetry(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if isInternalError(err) {
			return fmt.Errorf("FATAL: DuckDB internal error: %w", err)
		}
		if !isTransactionConflict(err) {
			return err
		}

		backoff := time.Millisecond * time.Duration(1<<uint(attempt)) // 1ms, 2ms, 4ms
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// ---------------------------------------------------------------------------
// Job
// ---------------------------------------------------------------------------

// InsertJob creates a new pending job.
func (db *DB) InsertJob(ctx context.Context, job *models.Job) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if job.Status == "" {
		job.Status = models.JobPending
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	stmt, err := db.preparedStmt(ctx, `INSERT INTO job (
		id, prompt, duration_seconds, status, r2_key, workflow_type, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert job: %w", err)
	}

	_, err = stmt.ExecContext(ctx, job.ID, job.Prompt, job.DurationSeconds, job.Status,
		job.R2Key, string(job.WorkflowType), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (db *DB) GetJob(ctx context.Context, id string) (*models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var job models.Job
	var workflowType sql.NullString
	row := db.conn.QueryRowContext(ctx, `SELECT id, prompt, duration_seconds, status, r2_key,
		workflow_type, created_at, updated_at FROM job WHERE id = ?`, id)
	err := row.Scan(&job.ID, &job.Prompt, &job.DurationSeconds, &job.Status, &job.R2Key,
		&workflowType, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	job.WorkflowType = models.WorkflowType(workflowType.String)
	return &job, nil
}

// CompleteJob flips a pending job to completed and attaches its blob key.
// Invariant: status == completed implies r2_key is non-nil.
func (db *DB) CompleteJob(ctx context.Context, id, r2Key string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE job SET status = ?, r2_key = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.JobCompleted, r2Key, time.Now(), id, models.JobPending)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return requireAffected(result, "job not pending or not found: "+id)
}

// FailJob flips a pending job to failed; terminal, no retries.
func (db *DB) FailJob(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE job SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.JobFailed, time.Now(), id, models.JobPending)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return requireAffected(result, "job not pending or not found: "+id)
}

// ListPendingJobs returns pending jobs oldest-first, for the Loop Controller
// and diagnostics.
func (db *DB) ListPendingJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	qb := newQueryBuilder(`SELECT id, prompt, duration_seconds, status, r2_key,
		workflow_type, created_at, updated_at FROM job WHERE status = ?`)
	qb.args = append(qb.args, models.JobPending)
	query, args := qb.build("ORDER BY created_at ASC LIMIT ?")
	args = append(args, normalizeLimit(limit, 100, 1000))

	return queryAndScan(ctx, db.conn, query, args, scanJob)
}

func scanJob(rows *sql.Rows) (*models.Job, error) {
	var job models.Job
	var workflowType sql.NullString
	if err := rows.Scan(&job.ID, &job.Prompt, &job.DurationSeconds, &job.Status, &job.R2Key,
		&workflowType, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	job.WorkflowType = models.WorkflowType(workflowType.String)
	return &job, nil
}

// requireAffected returns an error if result reports zero rows affected.
func requireAffected(result sql.Result, notFoundMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s", notFoundMsg)
	}
	return nil
}

// normalizeLimit clamps limit to (0, max], substituting def when unset.
func normalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// ---------------------------------------------------------------------------
// LearningRun / Event / Feedback / DiscoveryRun
// ---------------------------------------------------------------------------

// InsertLearningRun records one committed interpret/generate/analyze cycle.
func (db *DB) InsertLearningRun(ctx context.Context, run *models.LearningRun) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `INSERT INTO learning_run (
		job_id, prompt, spec, analysis, created_at
	) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		run.JobID, run.Prompt, run.Spec, run.Analysis, run.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert learning run: %w", err)
	}
	return id, nil
}

// InsertEvent appends a diagnostic event.
func (db *DB) InsertEvent(ctx context.Context, ev *models.Event) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if !models.ValidEventType(string(ev.EventType)) {
		return 0, fmt.Errorf("invalid event type: %s", ev.EventType)
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `INSERT INTO event (
		event_type, job_id, payload, created_at
	) VALUES (?, ?, ?, ?) RETURNING id`,
		ev.EventType, ev.JobID, ev.Payload, ev.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

// UpsertFeedback records a 1=down/2=up rating, unique per job.
func (db *DB) UpsertFeedback(ctx context.Context, fb *models.Feedback) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if !models.ValidRating(fb.Rating) {
		return fmt.Errorf("invalid feedback rating: %d", fb.Rating)
	}
	fb.UpdatedAt = time.Now()

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO feedback (job_id, rating, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (job_id) DO UPDATE SET
				rating = EXCLUDED.rating,
				updated_at = EXCLUDED.updated_at`,
			fb.JobID, fb.Rating, fb.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert feedback: %w", err)
		}
		return nil
	})
}

// InsertDiscoveryRun records one discoveries-ingestion attempt.
func (db *DB) InsertDiscoveryRun(ctx context.Context, run *models.DiscoveryRun) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `INSERT INTO discovery_run (
		job_id, results_json, created_at
	) VALUES (?, ?, ?) RETURNING id`,
		run.JobID, run.ResultsJS, run.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert discovery run: %w", err)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Name reserve
// ---------------------------------------------------------------------------

// ErrNameTaken is returned by ReserveName when name is already reserved.
var ErrNameTaken = errors.New("name already reserved")

// ReserveName atomically claims name in the name reserve (first-writer-wins,
// satisfies namealloc.Store). Returns ErrNameTaken if another writer already
// holds it.
func (db *DB) ReserveName(ctx context.Context, name string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO name_reserve (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reserve name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNameTaken
	}
	return nil
}

// NameTaken reports whether name is already present in the name reserve.
// Satisfies the namealloc.Store interface.
func (db *DB) NameTaken(ctx context.Context, name string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM name_reserve WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check name reserve: %w", err)
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// Static registries (color / sound)
// ---------------------------------------------------------------------------

// UpsertStaticColor inserts a new color discovery or increments count on an
// existing canonical key. name/depth_breakdown are only written on insert -
// a name, once allocated, never changes.
func (db *DB) UpsertStaticColor(ctx context.Context, row *models.StaticColor, depthBreakdownJSON, themeBreakdownJSON string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row.UpdatedAt = time.Now()

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO static_color (
			canonical_key, r, g, b, count, name, depth_breakdown_json, opacity_pct, theme_breakdown_json, updated_at
		) VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?)
		ON CONFLICT (canonical_key) DO UPDATE SET
			count = static_color.count + 1,
			depth_breakdown_json = CASE WHEN EXCLUDED.depth_breakdown_json <> '' THEN EXCLUDED.depth_breakdown_json ELSE static_color.depth_breakdown_json END,
			updated_at = EXCLUDED.updated_at`,
			row.Key, row.R, row.G, row.B, row.Name, depthBreakdownJSON, row.OpacityPct, themeBreakdownJSON, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert static color: %w", err)
		}
		return nil
	})
}

// UpsertStaticSound inserts a new sound discovery or increments count on an
// existing canonical key.
func (db *DB) UpsertStaticSound(ctx context.Context, row *models.StaticSound, depthBreakdownJSON string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row.UpdatedAt = time.Now()

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO static_sound (
			canonical_key, amplitude, strength_pct, tone, timbre, count, name, depth_breakdown_json, updated_at
		) VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (canonical_key) DO UPDATE SET
			count = static_sound.count + 1,
			updated_at = EXCLUDED.updated_at`,
			row.Key, row.Amplitude, row.StrengthPct, row.Tone, row.Timbre, row.Name, depthBreakdownJSON, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert static sound: %w", err)
		}
		return nil
	})
}

// ListStaticColors returns color discoveries ordered by count descending.
func (db *DB) ListStaticColors(ctx context.Context, limit int) ([]*models.StaticColor, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT canonical_key, r, g, b, count, name, depth_breakdown_json, opacity_pct, theme_breakdown_json, updated_at
		FROM static_color ORDER BY count DESC LIMIT ?`
	return queryAndScan(ctx, db.conn, query, []interface{}{normalizeLimit(limit, 50, 1000)}, scanStaticColor)
}

func scanStaticColor(rows *sql.Rows) (*models.StaticColor, error) {
	var row models.StaticColor
	var depthJSON, themeJSON sql.NullString
	if err := rows.Scan(&row.Key, &row.R, &row.G, &row.B, &row.Count, &row.Name,
		&depthJSON, &row.OpacityPct, &themeJSON, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.DepthBreakdown = decodeFloatMap(depthJSON.String)
	row.ThemeBreakdown = decodeFloatMap(themeJSON.String)
	return &row, nil
}

// ---------------------------------------------------------------------------
// Blended registries (the thirteen learned_* domain tables)
// ---------------------------------------------------------------------------

// validBlendDomain reports whether domain names one of the thirteen
// learned_* tables, guarding against SQL injection via table-name
// interpolation in the queries below.
func validBlendDomain(domain string) bool {
	for _, d := range models.BlendDomains {
		if string(d) == domain {
			return true
		}
	}
	return false
}

// UpsertBlended inserts a new blended profile or increments count on an
// existing profile key within the named domain table.
func (db *DB) UpsertBlended(ctx context.Context, domain string, row *models.BlendedRow) error {
	if !validBlendDomain(domain) {
		return fmt.Errorf("unknown blend domain: %s", domain)
	}
	if !db.HasFeature(domain) {
		return fmt.Errorf("blend domain table unavailable: %s", domain)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row.UpdatedAt = time.Now()

	query := fmt.Sprintf(`INSERT INTO %s (
		profile_key, count, sources_json, name, depth_breakdown_json,
		motion_level, motion_std, motion_trend, direction, rhythm, updated_at
	) VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (profile_key) DO UPDATE SET
		count = %s.count + 1,
		sources_json = EXCLUDED.sources_json,
		updated_at = EXCLUDED.updated_at`, domain, domain)

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, query,
			row.ProfileKey, row.SourcesJSON, row.Name, row.DepthBreakdownJS,
			row.MotionLevel, row.MotionStd, row.MotionTrend, row.Direction, row.Rhythm, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert blended row in %s: %w", domain, err)
		}
		return nil
	})
}

// ListBlended returns domain's rows ordered by count descending.
func (db *DB) ListBlended(ctx context.Context, domain string, limit int) ([]*models.BlendedRow, error) {
	if !validBlendDomain(domain) {
		return nil, fmt.Errorf("unknown blend domain: %s", domain)
	}
	if !db.HasFeature(domain) {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT profile_key, count, sources_json, name, depth_breakdown_json,
		motion_level, motion_std, motion_trend, direction, rhythm, updated_at
		FROM %s ORDER BY count DESC LIMIT ?`, domain)
	return queryAndScan(ctx, db.conn, query, []interface{}{normalizeLimit(limit, 50, 1000)}, scanBlendedRow)
}

func scanBlendedRow(rows *sql.Rows) (*models.BlendedRow, error) {
	var row models.BlendedRow
	var sources, depth, trend, direction, rhythm sql.NullString
	if err := rows.Scan(&row.ProfileKey, &row.Count, &sources, &row.Name, &depth,
		&row.MotionLevel, &row.MotionStd, &trend, &direction, &rhythm, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.SourcesJSON = sources.String
	row.DepthBreakdownJS = depth.String
	row.MotionTrend = trend.String
	row.Direction = direction.String
	row.Rhythm = rhythm.String
	return &row, nil
}

// InsertLearnedBlend always inserts into the uncategorized fallback table -
// it is never deduplicated.
func (db *DB) InsertLearnedBlend(ctx context.Context, blend *models.LearnedBlend) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if blend.CreatedAt.IsZero() {
		blend.CreatedAt = time.Now()
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `INSERT INTO learned_blend (
		name, domain, inputs_json, output_json, primitive_depths_json, created_at
	) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		blend.Name, blend.Domain, blend.InputsJSON, blend.OutputJSON, blend.PrimitiveDepthsJS, blend.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert learned blend: %w", err)
	}
	return id, nil
}

// BlendNameTaken reports whether name is already used by any blend row
// (any learned_* domain table, or the uncategorized fallback). Satisfies the
// namealloc.Store interface.
func (db *DB) BlendNameTaken(ctx context.Context, name string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM learned_blend WHERE name = ?`, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check learned_blend names: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	for _, domain := range models.BlendDomains {
		if !db.HasFeature(string(domain)) {
			continue
		}
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE name = ?`, domain)
		if err := db.conn.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
			return false, fmt.Errorf("failed to check %s names: %w", domain, err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Narrative / linguistic / interpretation
// ---------------------------------------------------------------------------

// UpsertNarrativeEntry inserts a new semantic registry row or increments
// count for an existing (aspect, entry_key) pair.
func (db *DB) UpsertNarrativeEntry(ctx context.Context, row *models.NarrativeEntry) error {
	if !models.ValidNarrativeAspect(string(row.Aspect)) {
		return fmt.Errorf("invalid narrative aspect: %s", row.Aspect)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row.UpdatedAt = time.Now()

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO narrative_entry (
			aspect, entry_key, value, name, count, updated_at
		) VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (aspect, entry_key) DO UPDATE SET
			count = narrative_entry.count + 1,
			updated_at = EXCLUDED.updated_at`,
			row.Aspect, row.EntryKey, row.Value, row.Name, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert narrative entry: %w", err)
		}
		return nil
	})
}

// ListNarrativeEntries returns every entry recorded for aspect.
func (db *DB) ListNarrativeEntries(ctx context.Context, aspect models.NarrativeAspect) ([]*models.NarrativeEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT aspect, entry_key, value, name, count, updated_at
		FROM narrative_entry WHERE aspect = ? ORDER BY count DESC`
	return queryAndScan(ctx, db.conn, query, []interface{}{aspect}, scanNarrativeEntry)
}

func scanNarrativeEntry(rows *sql.Rows) (*models.NarrativeEntry, error) {
	var row models.NarrativeEntry
	var name sql.NullString
	if err := rows.Scan(&row.Aspect, &row.EntryKey, &row.Value, &name, &row.Count, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.Name = name.String
	return &row, nil
}

// UpsertLinguisticVariant inserts a new surface-span mapping or increments
// count for an existing (span, domain) pair.
func (db *DB) UpsertLinguisticVariant(ctx context.Context, row *models.LinguisticVariant) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row.UpdatedAt = time.Now()

	return withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO linguistic_variant (
			span, canonical, domain, variant_type, count, updated_at
		) VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (span, domain) DO UPDATE SET
			count = linguistic_variant.count + 1,
			updated_at = EXCLUDED.updated_at`,
			row.Span, row.Canonical, row.Domain, row.VariantType, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert linguistic variant: %w", err)
		}
		return nil
	})
}

// InsertInterpretation queues a prompt awaiting a structured instruction.
func (db *DB) InsertInterpretation(ctx context.Context, it *models.Interpretation) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now
	if it.Status == "" {
		it.Status = models.InterpretationPending
	}

	_, err := db.conn.ExecContext(ctx, `INSERT INTO interpretation (
		id, prompt, instruction, source, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Prompt, it.Instruction, it.Source, it.Status, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert interpretation: %w", err)
	}
	return nil
}

// PatchInterpretation attaches a worker-supplied instruction and marks the
// row done; only valid from pending.
func (db *DB) PatchInterpretation(ctx context.Context, id, instruction string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE interpretation SET instruction = ?, status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		instruction, models.InterpretationDone, time.Now(), id, models.InterpretationPending)
	if err != nil {
		return fmt.Errorf("failed to patch interpretation: %w", err)
	}
	return requireAffected(result, "interpretation not pending or not found: "+id)
}

// NextPendingInterpretation returns the oldest pending interpretation for
// source, or nil if none are queued.
func (db *DB) NextPendingInterpretation(ctx context.Context, source models.InterpretationSource) (*models.Interpretation, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT id, prompt, instruction, source, status, created_at, updated_at
		FROM interpretation WHERE source = ? AND status = ? ORDER BY created_at ASC LIMIT 1`,
		source, models.InterpretationPending)

	var it models.Interpretation
	var instruction sql.NullString
	err := row.Scan(&it.ID, &it.Prompt, &instruction, &it.Source, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next pending interpretation: %w", err)
	}
	if instruction.Valid {
		it.Instruction = &instruction.String
	}
	return &it, nil
}

// decodeFloatMap is a best-effort JSON decoder for depth/theme breakdown
// columns; a malformed or empty value degrades to nil rather than failing
// the whole row scan.
func decodeFloatMap(raw string) map[string]float64 {
	if raw == "" {
		return nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		logging.Warn().Err(err).Msg("failed to decode breakdown JSON")
		return nil
	}
	return m
}
