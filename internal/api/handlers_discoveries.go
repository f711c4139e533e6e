// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/chiku524/motionloop/internal/depth"
	"github.com/chiku524/motionloop/internal/eventbus"
	"github.com/chiku524/motionloop/internal/models"
)

// discoveriesHardCap is the per-request item cap enforced across the union
// of every category array (spec §4.D point 1): the store permits ~50
// queries/request and each item costs ~3 queries.
const discoveriesHardCap = 14

// blendDomainByCategory maps a discoveries-request category to the
// blended-registry table it upserts into. "blends" is deliberately absent -
// it goes to the uncategorized learned_blend fallback instead.
var blendDomainByCategory = map[string]models.BlendDomain{
	"colors":         models.DomainColor,
	"motion":         models.DomainMotion,
	"lighting":       models.DomainLighting,
	"composition":    models.DomainComposition,
	"graphics":       models.DomainGraphics,
	"temporal":       models.DomainTemporal,
	"technical":      models.DomainTechnical,
	"audio_semantic": models.DomainAudioSemantic,
	"time":           models.DomainTime,
	"gradient":       models.DomainGradient,
	"camera":         models.DomainCamera,
	"transition":     models.DomainTransition,
	"depth":          models.DomainDepth,
}

// categoryItems pairs a category name with its request items, in the fixed
// processing order the cap walks.
type categoryItems struct {
	category string
	items    []models.DiscoveryItem
}

// CreateDiscoveries handles POST /knowledge/discoveries, the hot write path.
// Processing contract, spec §4.D:
//  1. A hard cap of 14 items total is enforced across every array.
//  2. Each keyed item is looked up; present -> increment, absent -> name +
//     insert.
//  3. Narrative keys are lowercased/trimmed; empty keys don't count against
//     the cap.
//  4. "blends" items always insert, never dedup.
//  5. job_id, if given, always gets a discovery_run row.
//  6. A mid-loop error short-circuits with 500 and the partial results.
func (h *Handler) CreateDiscoveries(w http.ResponseWriter, r *http.Request) {
	var req models.DiscoveriesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	order := []categoryItems{
		{"static_colors", req.StaticColors},
		{"static_sound", req.StaticSound},
		{"colors", req.Colors},
		{"blends", req.Blends},
		{"motion", req.Motion},
		{"lighting", req.Lighting},
		{"composition", req.Composition},
		{"graphics", req.Graphics},
		{"temporal", req.Temporal},
		{"technical", req.Technical},
		{"audio_semantic", req.AudioSemantic},
		{"time", req.Time},
		{"gradient", req.Gradient},
		{"camera", req.Camera},
		{"transition", req.Transition},
		{"depth", req.Depth},
	}

	ctx := r.Context()
	results := make(map[string]int, len(order)+1)
	processed := 0
	truncated := false

outer:
	for _, group := range order {
		for _, item := range group.items {
			if processed >= discoveriesHardCap {
				truncated = true
				break outer
			}
			if err := h.processDiscoveryItem(ctx, group.category, item); err != nil {
				h.finishDiscoveryRun(ctx, req.JobID, results)
				respondJSON(w, http.StatusInternalServerError, &models.DiscoveriesResponse{Truncated: truncated, Results: results})
				return
			}
			results[group.category]++
			processed++
		}
	}

	if !truncated {
	narrativeLoop:
		for aspect, items := range req.Narrative {
			aspect = strings.ToLower(strings.TrimSpace(aspect))
			for _, item := range items {
				entryKey := strings.ToLower(strings.TrimSpace(item.EntryKey))
				if aspect == "" || entryKey == "" {
					continue // empty keys skipped without counting against quota, §4.D point 3
				}
				if processed >= discoveriesHardCap {
					truncated = true
					break narrativeLoop
				}
				if err := h.processNarrativeItem(ctx, aspect, entryKey, item); err != nil {
					h.finishDiscoveryRun(ctx, req.JobID, results)
					respondJSON(w, http.StatusInternalServerError, &models.DiscoveriesResponse{Truncated: truncated, Results: results})
					return
				}
				results["narrative"]++
				processed++
			}
		}
	}

	h.finishDiscoveryRun(ctx, req.JobID, results)
	respondJSON(w, http.StatusCreated, &models.DiscoveriesResponse{Truncated: truncated, Results: results})
}

// finishDiscoveryRun appends a discovery_run row when job_id was provided,
// even when results are all zero, so diagnostics can distinguish "attempted"
// from "never tried" (spec §4.D point 5). When at least one item was
// committed it also publishes the results on TopicDiscoveryCommitted.
func (h *Handler) finishDiscoveryRun(ctx context.Context, jobID string, results map[string]int) {
	if h.bus != nil && len(results) > 0 {
		if data, err := json.Marshal(results); err == nil {
			_ = h.bus.Publish(ctx, eventbus.TopicDiscoveryCommitted, data)
		}
	}
	if jobID == "" {
		return
	}
	resultsJSON, _ := json.Marshal(results)
	if _, err := h.db.InsertDiscoveryRun(ctx, &models.DiscoveryRun{JobID: &jobID, ResultsJS: string(resultsJSON)}); err != nil {
		respondErrorLog("failed to record discovery run", err)
	}
}

// processDiscoveryItem routes a single item to its category's write path.
func (h *Handler) processDiscoveryItem(ctx context.Context, category string, item models.DiscoveryItem) error {
	switch category {
	case "static_colors":
		return h.upsertStaticColor(ctx, item)
	case "static_sound":
		return h.upsertStaticSound(ctx, item)
	case "blends":
		return h.insertLearnedBlend(ctx, item)
	default:
		if domain, ok := blendDomainByCategory[category]; ok {
			return h.upsertBlendDomain(ctx, domain, item)
		}
		return nil // unreachable given the fixed category list CreateDiscoveries drives
	}
}

func (h *Handler) upsertStaticColor(ctx context.Context, item models.DiscoveryItem) error {
	key := item.Key
	if key == "" && item.R != nil && item.G != nil && item.B != nil {
		key = colorKey(*item.R, *item.G, *item.B)
	}
	key = canonicalColorKey(key)

	exists, err := h.db.CanonicalKeyExists(ctx, "static_color", "canonical_key", key)
	if err != nil {
		return err
	}
	r, g, b := parseColorKeyParts(key)
	name := item.Name
	if !exists && name == "" {
		// route new colors through the RGB-semantic family mapping (spec §4.B)
		// rather than the generic combination allocator.
		name, err = h.names.ReserveSemanticColorName(ctx, r, g, b)
		if err != nil {
			return err
		}
	}

	depthBreakdown, themeBreakdown, opacityPct := depth.NormalizeStoredBreakdown(item.DepthBreakdown)
	depthJSON, themeJSON := marshalOrEmpty(depthBreakdown), marshalOrEmpty(themeBreakdown)

	row := &models.StaticColor{Key: key, R: r, G: g, B: b, Name: name, OpacityPct: opacityPct}
	return h.db.UpsertStaticColor(ctx, row, depthJSON, themeJSON)
}

func (h *Handler) upsertStaticSound(ctx context.Context, item models.DiscoveryItem) error {
	key := item.Key
	if key == "" {
		key = soundKey(item.StrengthPct, item.Tone, item.Timbre)
	}

	exists, err := h.db.CanonicalKeyExists(ctx, "static_sound", "canonical_key", key)
	if err != nil {
		return err
	}
	name := item.Name
	if !exists && name == "" {
		name, err = h.names.ReserveUniqueName(ctx)
		if err != nil {
			return err
		}
	}

	var amplitude, strengthPct float64
	if item.Amplitude != nil {
		amplitude = *item.Amplitude
	}
	if item.StrengthPct != nil {
		strengthPct = *item.StrengthPct
	}

	row := &models.StaticSound{Key: key, Amplitude: amplitude, StrengthPct: strengthPct, Tone: item.Tone, Timbre: item.Timbre, Name: name}
	return h.db.UpsertStaticSound(ctx, row, marshalOrEmpty(item.DepthBreakdown))
}

func (h *Handler) upsertBlendDomain(ctx context.Context, domain models.BlendDomain, item models.DiscoveryItem) error {
	key := item.Key
	if key == "" {
		return nil // nothing to dedup against; drop rather than corrupt the table with a blank key
	}

	exists, err := h.db.CanonicalKeyExists(ctx, string(domain), "profile_key", key)
	if err != nil {
		return err
	}
	name := item.Name
	if !exists && name == "" {
		name, err = h.names.ReserveUniqueName(ctx)
		if err != nil {
			return err
		}
	}

	sources := "[]"
	if item.SourcePrompt != "" {
		if raw, err := json.Marshal([]string{item.SourcePrompt}); err == nil {
			sources = string(raw)
		}
	}

	row := &models.BlendedRow{
		ProfileKey:       key,
		SourcesJSON:      sources,
		Name:             name,
		DepthBreakdownJS: marshalOrEmpty(item.DepthBreakdown),
		MotionLevel:      item.MotionLevel,
		MotionStd:        item.MotionStd,
		MotionTrend:      item.MotionTrend,
		Direction:        item.Direction,
		Rhythm:           item.Rhythm,
	}
	return h.db.UpsertBlended(ctx, string(domain), row)
}

// insertLearnedBlend always inserts (no dedup); the name is resolved unique
// via the allocator rather than reserved fresh (spec §4.D point 4, §4.B
// resolve_unique_blend_name).
func (h *Handler) insertLearnedBlend(ctx context.Context, item models.DiscoveryItem) error {
	base := item.Name
	if base == "" {
		base = item.Domain
	}
	if base == "" {
		base = "blend"
	}
	name, err := h.names.ResolveUniqueBlendName(ctx, base)
	if err != nil {
		return err
	}

	inputsJSON := marshalAnyOrEmpty(item.Inputs)
	outputJSON := marshalAnyOrEmpty(item.Output)

	primitiveDepthsJSON := marshalOrEmpty(item.DepthBreakdown)
	if primitiveDepthsJSON == "" && item.Output != nil {
		flat, _ := depth.FlattenBlend(item.Output)
		primitiveDepthsJSON = marshalOrEmpty(flat)
	}

	blend := &models.LearnedBlend{
		Name:              name,
		Domain:            item.Domain,
		InputsJSON:        inputsJSON,
		OutputJSON:        outputJSON,
		PrimitiveDepthsJS: primitiveDepthsJSON,
	}
	_, err = h.db.InsertLearnedBlend(ctx, blend)
	return err
}

func (h *Handler) processNarrativeItem(ctx context.Context, aspect, entryKey string, item models.DiscoveryItem) error {
	value := item.Value
	if value == "" {
		value = entryKey
	}
	row := &models.NarrativeEntry{
		Aspect:   models.NarrativeAspect(aspect),
		EntryKey: entryKey,
		Value:    value,
		Name:     item.Name,
	}
	return h.db.UpsertNarrativeEntry(ctx, row)
}

// --- small helpers -----------------------------------------------------

func colorKey(r, g, b int) string {
	return strconvItoa(r) + "," + strconvItoa(g) + "," + strconvItoa(b)
}

// canonicalColorKey strips a trailing "_<opacity>" suffix so the canonical
// key is always bare "r,g,b" (spec §3 static_color, testable property #2).
func canonicalColorKey(key string) string {
	if idx := strings.LastIndex(key, "_"); idx != -1 {
		return key[:idx]
	}
	return key
}

func parseColorKeyParts(key string) (r, g, b int) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return 0, 0, 0
	}
	r = atoiOrZero(parts[0])
	g = atoiOrZero(parts[1])
	b = atoiOrZero(parts[2])
	return r, g, b
}

func soundKey(strengthPct *float64, tone, timbre string) string {
	strength := "0"
	if strengthPct != nil {
		strength = strconvItoa(int(*strengthPct))
	}
	return strength + "_" + tone + "_" + timbre
}

func marshalOrEmpty(m map[string]float64) string {
	if len(m) == 0 {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}

func marshalAnyOrEmpty(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}
