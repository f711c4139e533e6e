// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package depth

import "testing"

func TestColorFromRGBBlackWhiteExtremes(t *testing.T) {
	breakdown, depthPct := ColorFromRGB(0, 0, 0)
	if breakdown["black"] != 100 {
		t.Fatalf("expected black=100 for (0,0,0), got %v", breakdown)
	}
	if _, ok := breakdown["white"]; ok {
		t.Fatalf("expected no white entry below 1%%, got %v", breakdown)
	}
	if depthPct != 100 {
		t.Fatalf("expected depthPct=100, got %v", depthPct)
	}

	breakdown, depthPct = ColorFromRGB(255, 255, 255)
	if breakdown["white"] != 100 {
		t.Fatalf("expected white=100 for (255,255,255), got %v", breakdown)
	}
	if depthPct != 100 {
		t.Fatalf("expected depthPct=100, got %v", depthPct)
	}
}

func TestColorFromRGBMidpointOmitsBelowThreshold(t *testing.T) {
	// Midtone gray: black and white both land near 50%, well above the 1% cutoff.
	breakdown, depthPct := ColorFromRGB(128, 128, 128)
	if breakdown["black"] <= 0 || breakdown["white"] <= 0 {
		t.Fatalf("expected both black and white present for midtone gray, got %v", breakdown)
	}
	if depthPct < 49 || depthPct > 51 {
		t.Fatalf("expected depthPct near 50 for midtone gray, got %v", depthPct)
	}
}

func TestNormalizeStoredBreakdownRoutesKeys(t *testing.T) {
	raw := map[string]float64{
		"black":   0.4, // fraction, scales to 40
		"glow":    55,  // already percent, not a color primitive
		"opacity": 0.9, // routed to opacityPct
	}
	depthBreakdown, themeBreakdown, opacityPct := NormalizeStoredBreakdown(raw)

	if depthBreakdown["black"] != 40 {
		t.Fatalf("expected black normalized to 40, got %v", depthBreakdown)
	}
	if themeBreakdown["glow"] != 55 {
		t.Fatalf("expected glow passed through as 55, got %v", themeBreakdown)
	}
	if opacityPct == nil || *opacityPct != 90 {
		t.Fatalf("expected opacity normalized to 90, got %v", opacityPct)
	}
}

func TestDepthPctForStoredFallsBackTo100(t *testing.T) {
	if got := DepthPctForStored(map[string]float64{}); got != 100 {
		t.Fatalf("expected 100 for empty breakdown, got %v", got)
	}
	if got := DepthPctForStored(map[string]float64{"black": 30, "red": 62.5}); got != 62.5 {
		t.Fatalf("expected max value 62.5, got %v", got)
	}
}

func TestFlattenBlendDotJoinsPathsAndTracksMax(t *testing.T) {
	nested := map[string]any{
		"cool": map[string]any{
			"blue": 80.0,
			"teal": 20,
		},
		"warm": 45.5,
	}
	flat, depthPct := FlattenBlend(nested)

	if flat["cool.blue"] != 80 {
		t.Fatalf("expected cool.blue=80, got %v", flat)
	}
	if flat["cool.teal"] != 20 {
		t.Fatalf("expected cool.teal=20, got %v", flat)
	}
	if flat["warm"] != 45.5 {
		t.Fatalf("expected warm=45.5, got %v", flat)
	}
	if depthPct != 80 {
		t.Fatalf("expected max depthPct=80, got %v", depthPct)
	}
}

func TestFlattenBlendIgnoresNonNumericLeaves(t *testing.T) {
	nested := map[string]any{
		"label": "ignored",
		"value": 10.0,
	}
	flat, depthPct := FlattenBlend(nested)

	if _, ok := flat["label"]; ok {
		t.Fatalf("expected non-numeric leaf to be skipped, got %v", flat)
	}
	if flat["value"] != 10 || depthPct != 10 {
		t.Fatalf("expected value=10 and depthPct=10, got flat=%v depthPct=%v", flat, depthPct)
	}
}
