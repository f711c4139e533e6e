// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/chiku524/motionloop/internal/kv"
	"github.com/chiku524/motionloop/internal/metrics"
	"github.com/chiku524/motionloop/internal/models"
)

const (
	loopStateMaxArrayLen  = 200
	loopStateMaxEntryLen  = 500
	defaultRecentRunCount = 10
	maxProgressLast       = 100
	maxDiagnosticsLast    = 50

	// targetPrecisionPct is the fixed precision target progress is reported
	// against (spec §8 boundary scenario 5), distinct from the registry
	// coverage ratio computed in computeCoverageSnapshot.
	targetPrecisionPct = 95.0
)

// GetLoopConfig handles GET /loop/config.
func (h *Handler) GetLoopConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.LoopConfig
	if err := h.kv.GetLoopConfig(&cfg); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			respondJSON(w, http.StatusOK, models.LoopConfig{})
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to read loop config", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// PostLoopConfig handles POST /loop/config as a merge-patch: unset JSON
// fields keep their previously stored value.
func (h *Handler) PostLoopConfig(w http.ResponseWriter, r *http.Request) {
	var current models.LoopConfig
	if err := h.kv.GetLoopConfig(&current); err != nil && !errors.Is(err, kv.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to read loop config", err)
		return
	}

	patch := current
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid loop config", err)
		return
	}

	if err := h.kv.SetLoopConfig(&patch); err != nil {
		respondRateLimitedOr500(w, "failed to save loop config", err)
		return
	}
	respondJSON(w, http.StatusOK, patch)
}

// GetLoopState handles GET /loop/state.
func (h *Handler) GetLoopState(w http.ResponseWriter, r *http.Request) {
	var state models.LoopState
	if err := h.kv.GetLoopState(&state); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			respondJSON(w, http.StatusOK, models.LoopState{})
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to read loop state", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// PostLoopState handles POST /loop/state as a full replace, with the array
// and payload caps from spec §4.D.
func (h *Handler) PostLoopState(w http.ResponseWriter, r *http.Request) {
	var state models.LoopState
	if err := decodeJSON(r, &state); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validateLoopState(&state); err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.kv.SetLoopState(&state); err != nil {
		respondRateLimitedOr500(w, "failed to save loop state", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func validateLoopState(state *models.LoopState) error {
	if len(state.GoodPrompts) > loopStateMaxArrayLen || len(state.RecentPrompts) > loopStateMaxArrayLen {
		return errors.New("good_prompts and recent_prompts are capped at 200 entries")
	}
	for _, p := range state.GoodPrompts {
		if len(p) > loopStateMaxEntryLen {
			return errors.New("good_prompts entries are capped at 500 chars")
		}
	}
	for _, p := range state.RecentPrompts {
		if len(p) > loopStateMaxEntryLen {
			return errors.New("recent_prompts entries are capped at 500 chars")
		}
	}
	return nil
}

// respondRateLimitedOr500 maps the KV side-channel's write-budget error
// (spec §5 "rate-limited 1 write/s/key") onto HTTP 429 with Retry-After;
// any other failure is a plain 500.
func respondRateLimitedOr500(w http.ResponseWriter, message string, err error) {
	if err != nil && strings.Contains(err.Error(), "write budget exceeded") {
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusTooManyRequests, message, err)
		return
	}
	respondError(w, http.StatusInternalServerError, message, err)
}

// GetLoopStatus handles GET /loop/status.
func (h *Handler) GetLoopStatus(w http.ResponseWriter, r *http.Request) {
	var cfg models.LoopConfig
	if err := h.kv.GetLoopConfig(&cfg); err != nil && !errors.Is(err, kv.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to read loop config", err)
		return
	}
	var state models.LoopState
	if err := h.kv.GetLoopState(&state); err != nil && !errors.Is(err, kv.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to read loop state", err)
		return
	}
	recentRuns, err := h.db.ListRecentCompletedJobs(r.Context(), defaultRecentRunCount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list recent runs", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"config":      cfg,
		"state":       state,
		"recent_runs": recentRuns,
	})
}

// GetLoopProgress handles GET /loop/progress?last=N.
func (h *Handler) GetLoopProgress(w http.ResponseWriter, r *http.Request) {
	last := getIntParam(r, "last", 20)
	if last > maxProgressLast {
		last = maxProgressLast
	}
	snapshot, err := h.computeProgress(r.Context(), last)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute progress", err)
		return
	}
	metrics.PrecisionPct.Set(snapshot.PrecisionPct)
	metrics.DiscoveryRatePct.Set(snapshot.DiscoveryRatePct)
	respondJSON(w, http.StatusOK, snapshot)
}

// computeProgress implements spec §4.F: precision, discovery rate, and
// repetition score (top-20 share of learned_motion count).
func (h *Handler) computeProgress(ctx context.Context, last int) (*models.ProgressSnapshot, error) {
	recent, err := h.db.ListRecentCompletedJobs(ctx, last)
	if err != nil {
		return nil, err
	}
	jobIDs := make([]string, 0, len(recent))
	for _, j := range recent {
		jobIDs = append(jobIDs, j.ID)
	}
	withLearning, err := h.db.JobsWithLearningRuns(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	withDiscovery, err := h.db.JobsWithDiscoveryRuns(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	precision := percentageOfPresent(jobIDs, withLearning)
	discoveryRate := percentageOfPresent(jobIDs, withDiscovery)

	motionTotal, err := h.db.CountRows(ctx, "learned_motion")
	if err != nil {
		return nil, err
	}
	top20Sum, err := h.db.TopNCountSum(ctx, "learned_motion", 20)
	if err != nil {
		return nil, err
	}
	repetition := 0.0
	if motionTotal > 0 {
		repetition = roundTo2(float64(top20Sum) / float64(motionTotal))
	}

	return &models.ProgressSnapshot{
		PrecisionPct:     precision,
		DiscoveryRatePct: discoveryRate,
		RepetitionScore:  repetition,
		TargetPct:        targetPrecisionPct,
		TotalRuns:        len(jobIDs),
	}, nil
}

func percentageOfPresent(ids []string, present map[string]bool) float64 {
	if len(ids) == 0 {
		return 0
	}
	n := 0
	for _, id := range ids {
		if present[id] {
			n++
		}
	}
	return 100 * float64(n) / float64(len(ids))
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// computeCoverageSnapshot is the small-query coverage projection served by
// /registries/coverage (spec §4.F: "must be producible in a handful of
// queries so it can be co-requested on every loop poll"). The /loop/progress
// response does not include a coverage snapshot.
func (h *Handler) computeCoverageSnapshot(ctx context.Context) (*models.CoverageSnapshot, error) {
	colorCount, err := h.db.CountRows(ctx, "static_color")
	if err != nil {
		return nil, err
	}
	narrativeCounts, err := h.db.NarrativeCoverageCounts(ctx)
	if err != nil {
		return nil, err
	}
	narrative := make(map[string]float64, len(models.NarrativeOriginSizes))
	for aspect, size := range models.NarrativeOriginSizes {
		if size == 0 {
			narrative[string(aspect)] = 0
			continue
		}
		narrative[string(aspect)] = roundTo2(100 * float64(narrativeCounts[aspect]) / float64(size))
	}
	soundPresence, err := h.db.StaticSoundPrimitivePresent(ctx)
	if err != nil {
		return nil, err
	}

	return &models.CoverageSnapshot{
		StaticColorCoveragePct: 100 * float64(colorCount) / float64(staticColorTargetCardinality),
		NarrativeCoverage:      narrative,
		StaticSoundPresent:     soundPresence,
	}, nil
}

// GetLoopDiagnostics handles GET /loop/diagnostics?last=N.
func (h *Handler) GetLoopDiagnostics(w http.ResponseWriter, r *http.Request) {
	last := getIntParam(r, "last", 20)
	if last > maxDiagnosticsLast {
		last = maxDiagnosticsLast
	}
	ctx := r.Context()

	jobs, err := h.db.ListRecentCompletedJobs(ctx, last)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list recent jobs", err)
		return
	}
	jobIDs := make([]string, 0, len(jobs))
	for _, j := range jobs {
		jobIDs = append(jobIDs, j.ID)
	}
	withLearning, err := h.db.JobsWithLearningRuns(ctx, jobIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check learning runs", err)
		return
	}
	withDiscovery, err := h.db.JobsWithDiscoveryRuns(ctx, jobIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check discovery runs", err)
		return
	}

	diagnostics := make([]map[string]interface{}, 0, len(jobs))
	for _, j := range jobs {
		diagnostics = append(diagnostics, map[string]interface{}{
			"job_id":        j.ID,
			"has_learning":  withLearning[j.ID],
			"has_discovery": withDiscovery[j.ID],
		})
	}
	respondJSON(w, http.StatusOK, diagnostics)
}
