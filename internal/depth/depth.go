// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package depth computes contribution breakdowns for discoveries against
// their origin primitives: a luminance model for raw colors, normalization
// and redirection for stored breakdowns, and flattening for blend profiles.
package depth

import (
	"math"
	"sort"
	"strings"

	"github.com/chiku524/motionloop/internal/models"
)

// ColorFromRGB computes the luminance-based black/white breakdown for a raw
// (r,g,b) with no stored breakdown. L = (r+g+b)/(3*255); black = 1-L;
// white = L. Each is reported as a percentage when >= 1%.
func ColorFromRGB(r, g, b int) (breakdown map[string]float64, depthPct float64) {
	l := float64(r+g+b) / (3 * 255)
	black := (1 - l) * 100
	white := l * 100

	breakdown = make(map[string]float64, 2)
	if black >= 1 {
		breakdown["black"] = round2(black)
	}
	if white >= 1 {
		breakdown["white"] = round2(white)
	}

	depthPct = math.Max(black, white)
	return breakdown, round2(depthPct)
}

// NormalizeStoredBreakdown splits a raw, caller-supplied key->value map into
// the three destinations spec §4.C requires: color primitives stay in
// depth_breakdown, "opacity" moves to opacityPct, everything else moves to
// themeBreakdown. Numeric values <= 1 are treated as fractions and scaled to
// percent; otherwise they are rounded as already-percent values.
func NormalizeStoredBreakdown(raw map[string]float64) (depthBreakdown, themeBreakdown map[string]float64, opacityPct *float64) {
	depthBreakdown = make(map[string]float64)
	themeBreakdown = make(map[string]float64)

	for key, v := range raw {
		normalized := normalizeValue(v)
		lower := strings.ToLower(key)
		switch {
		case lower == "opacity":
			o := normalized
			opacityPct = &o
		case models.IsColorPrimitive(lower):
			depthBreakdown[lower] = normalized
		default:
			themeBreakdown[lower] = normalized
		}
	}

	return depthBreakdown, themeBreakdown, opacityPct
}

func normalizeValue(v float64) float64 {
	if v <= 1 {
		return round2(v * 100)
	}
	return round2(v)
}

// DepthPctForStored returns the depth_pct summary for a learned color row:
// the max of depth_breakdown values, or 100 when only theme/opacity data is
// present.
func DepthPctForStored(depthBreakdown map[string]float64) float64 {
	max := 0.0
	found := false
	for _, v := range depthBreakdown {
		found = true
		if v > max {
			max = v
		}
	}
	if !found {
		return 100
	}
	return round2(max)
}

// FlattenBlend flattens a nested numeric map (e.g. a blend's primitive_depths
// payload) into dot-joined key paths, and returns the max leaf value as
// depth_pct.
func FlattenBlend(nested map[string]any) (flat map[string]float64, depthPct float64) {
	flat = make(map[string]float64)
	flattenInto(nested, "", flat)

	max := 0.0
	for _, v := range flat {
		if v > max {
			max = v
		}
	}

	return flat, round2(max)
}

func flattenInto(node map[string]any, prefix string, out map[string]float64) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic traversal order

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := node[k].(type) {
		case map[string]any:
			flattenInto(val, path, out)
		case float64:
			out[path] = round2(val)
		case int:
			out[path] = round2(float64(val))
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
