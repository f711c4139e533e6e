// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package models

import "testing"

func TestIsColorPrimitive(t *testing.T) {
	for _, p := range ColorPrimitives {
		if !IsColorPrimitive(p) {
			t.Fatalf("expected %q to be a color primitive", p)
		}
	}
	if IsColorPrimitive("turquoise") {
		t.Fatalf("expected turquoise to not be a fixed color primitive")
	}
}

func TestValidNarrativeAspect(t *testing.T) {
	for a := range NarrativeOriginSizes {
		if !ValidNarrativeAspect(string(a)) {
			t.Fatalf("expected %q to be a valid narrative aspect", a)
		}
	}
	if ValidNarrativeAspect("tone") {
		t.Fatalf("expected tone to be rejected as an unknown aspect")
	}
}

func TestLoopConfigValidateAcceptsBoundaries(t *testing.T) {
	cases := []LoopConfig{
		{DelaySeconds: 0, ExploitRatio: 0, DurationSeconds: 1},
		{DelaySeconds: 600, ExploitRatio: 1, DurationSeconds: 60},
		{DelaySeconds: 30, ExploitRatio: 0.5, DurationSeconds: 8},
	}
	for _, c := range cases {
		if err := c.Validate(); err != nil {
			t.Fatalf("expected %+v to validate, got %v", c, err)
		}
	}
}

func TestLoopConfigValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]LoopConfig{
		"delay too low":    {DelaySeconds: -1, ExploitRatio: 0.5, DurationSeconds: 8},
		"delay too high":   {DelaySeconds: 601, ExploitRatio: 0.5, DurationSeconds: 8},
		"ratio too low":    {DelaySeconds: 30, ExploitRatio: -0.01, DurationSeconds: 8},
		"ratio too high":   {DelaySeconds: 30, ExploitRatio: 1.01, DurationSeconds: 8},
		"duration too low": {DelaySeconds: 30, ExploitRatio: 0.5, DurationSeconds: 0},
		"duration too high": {DelaySeconds: 30, ExploitRatio: 0.5, DurationSeconds: 61},
	}
	for name, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected Validate to reject %+v", name, c)
		}
	}
}

func TestRangeErrorMessage(t *testing.T) {
	err := LoopConfig{DelaySeconds: -5, ExploitRatio: 0.5, DurationSeconds: 8}.Validate()
	var rangeErr *RangeError
	if err == nil {
		t.Fatalf("expected an error")
	}
	rangeErr, ok := err.(*RangeError)
	if !ok {
		t.Fatalf("expected *RangeError, got %T", err)
	}
	if rangeErr.Field != "delay_seconds" {
		t.Fatalf("expected field delay_seconds, got %q", rangeErr.Field)
	}
	if rangeErr.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}
