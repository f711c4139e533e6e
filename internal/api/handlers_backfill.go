// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/chiku524/motionloop/internal/models"
	"github.com/chiku524/motionloop/internal/namealloc"
)

// backfillTable describes one named-registry table eligible for the
// gibberish-name backfill scan.
type backfillTable struct {
	name     string
	pkColumn string
}

// backfillTables is every table that carries a display "name" column. Order
// matches the pure-then-blended-then-fallback listing in spec §3.
var backfillTables = append([]backfillTable{
	{"static_color", "canonical_key"},
	{"static_sound", "canonical_key"},
}, blendBackfillTables()...)

func blendBackfillTables() []backfillTable {
	out := make([]backfillTable, 0, len(models.BlendDomains)+1)
	for _, d := range models.BlendDomains {
		out = append(out, backfillTable{string(d), "profile_key"})
	}
	return append(out, backfillTable{"learned_blend", "id"})
}

// cascadeColumns lists every (table, column) pair that may echo an old name
// back as free text, per spec §4.D's cascade-rename contract.
var cascadeColumns = []struct{ table, column string }{
	{"interpretation", "prompt"},
	{"interpretation", "instruction"},
	{"learning_run", "prompt"},
	{"learning_run", "spec"},
	{"learning_run", "analysis"},
	{"learned_blend", "inputs_json"},
	{"learned_blend", "output_json"},
	{"learned_blend", "primitive_depths_json"},
}

func init() {
	for _, d := range models.BlendDomains {
		cascadeColumns = append(cascadeColumns, struct{ table, column string }{string(d), "sources_json"})
	}
}

const backfillNamesDefaultLimit = 20

// PostBackfillNames handles POST /registries/backfill-names?dry_run=0|1&limit=N&table=….
func (h *Handler) PostBackfillNames(w http.ResponseWriter, r *http.Request) {
	dryRun := getIntParam(r, "dry_run", 0) != 0
	limit := getIntParam(r, "limit", backfillNamesDefaultLimit)
	tableFilter := r.URL.Query().Get("table")
	ctx := r.Context()

	renamed := make([]map[string]interface{}, 0)
	remaining := limit

	for _, t := range backfillTables {
		if remaining <= 0 {
			break
		}
		if tableFilter != "" && tableFilter != t.name {
			continue
		}
		if !h.db.TableExists(t.name) {
			continue // missing tables are skipped silently, spec §4.G
		}

		names, err := h.db.DistinctNames(ctx, t.name)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to scan names in "+t.name, err)
			return
		}
		gibberish := make([]string, 0)
		for _, n := range names {
			if namealloc.IsGibberish(n) {
				gibberish = append(gibberish, n)
			}
		}
		if len(gibberish) == 0 {
			continue
		}

		candidates, err := h.db.GibberishCandidates(ctx, t.name, t.pkColumn, gibberish, remaining)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to fetch gibberish candidates in "+t.name, err)
			return
		}

		for _, c := range candidates {
			if remaining <= 0 {
				break
			}
			newName, err := h.names.ReserveUniqueName(ctx)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "failed to allocate replacement name", err)
				return
			}
			entry := map[string]interface{}{"table": t.name, "id": c.ID, "old_name": c.Name, "new_name": newName}
			if !dryRun {
				if err := h.db.RenameInTable(ctx, t.name, t.pkColumn, c.ID, c.Name, newName); err != nil {
					respondError(w, http.StatusInternalServerError, "failed to rename in "+t.name, err)
					return
				}
				cascaded := h.cascadeRename(ctx, c.Name, newName)
				entry["cascaded_updates"] = cascaded
			}
			renamed = append(renamed, entry)
			remaining--
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"dry_run": dryRun, "renamed": renamed})
}

// cascadeRename rewrites oldName to newName across every free-text column
// that might reference it, tolerating absent tables (spec §4.G).
func (h *Handler) cascadeRename(ctx context.Context, oldName, newName string) int64 {
	var total int64
	for _, cc := range cascadeColumns {
		if !h.db.TableExists(cc.table) {
			continue
		}
		n, err := h.db.CascadeRenameColumn(ctx, cc.table, cc.column, oldName, newName)
		if err != nil {
			continue // a single column's failure should not abort the whole cascade
		}
		total += n
	}
	return total
}

// GetBackfillRows handles GET /registries/backfill-rows?table=…&limit=N.
func (h *Handler) GetBackfillRows(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimSpace(r.URL.Query().Get("table"))
	limit := getIntParam(r, "limit", 50)
	if table == "" || !h.db.TableExists(table) {
		respondError(w, http.StatusBadRequest, "unknown or missing table", nil)
		return
	}

	ctx := r.Context()
	switch table {
	case "static_color":
		rows, err := h.db.ListStaticColors(ctx, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list rows", err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	case "static_sound":
		rows, err := h.db.ListStaticSound(ctx, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list rows", err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	default:
		for _, d := range models.BlendDomains {
			if string(d) == table {
				rows, err := h.db.ListBlended(ctx, table, limit)
				if err != nil {
					respondError(w, http.StatusInternalServerError, "failed to list rows", err)
					return
				}
				respondJSON(w, http.StatusOK, rows)
				return
			}
		}
		respondError(w, http.StatusBadRequest, "table is not eligible for raw-row export", nil)
	}
}

// PostBackfillDepths handles POST /registries/backfill-depths.
func (h *Handler) PostBackfillDepths(w http.ResponseWriter, r *http.Request) {
	var req models.BackfillDepthsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := r.Context()
	applied := 0
	for _, u := range req.Updates {
		if !h.db.TableExists(u.Table) {
			continue
		}
		depthJSON := marshalOrEmpty(u.DepthBreakdown)
		if err := h.db.UpdateDepthBreakdown(ctx, u.Table, u.ID, depthJSON); err != nil {
			continue // best-effort per-row; one bad id shouldn't fail the whole batch
		}
		applied++
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"applied": applied, "requested": len(req.Updates)})
}
