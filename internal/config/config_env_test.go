// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package config

import (
	"testing"
	"time"
)

func TestGetEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_STR", "")
	if got := getEnv("MOTIONLOOP_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("MOTIONLOOP_TEST_STR", "set")
	if got := getEnv("MOTIONLOOP_TEST_STR", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestGetIntEnvIgnoresUnparsable(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_INT", "not-a-number")
	if got := getIntEnv("MOTIONLOOP_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7 on unparsable value, got %d", got)
	}

	t.Setenv("MOTIONLOOP_TEST_INT", "42")
	if got := getIntEnv("MOTIONLOOP_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestGetDurationEnvParsesGoDurations(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_DUR", "30s")
	if got := getDurationEnv("MOTIONLOOP_TEST_DUR", time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}

func TestGetBoolEnvDefaultsOnUnset(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_BOOL", "")
	if got := getBoolEnv("MOTIONLOOP_TEST_BOOL", false); got != false {
		t.Fatalf("expected false default, got %v", got)
	}
	t.Setenv("MOTIONLOOP_TEST_BOOL", "true")
	if got := getBoolEnv("MOTIONLOOP_TEST_BOOL", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestGetSliceEnvSplitsAndTrims(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_SLICE", " a, b ,c")
	got := getSliceEnv("MOTIONLOOP_TEST_SLICE", []string{"default"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGetSliceEnvFallsBackWhenEmpty(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_SLICE_EMPTY", "")
	got := getSliceEnv("MOTIONLOOP_TEST_SLICE_EMPTY", []string{"default"})
	if len(got) != 1 || got[0] != "default" {
		t.Fatalf("expected default fallback, got %v", got)
	}
}

func TestGetMapEnvParsesKeyValuePairs(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_MAP", "Authorization=Bearer xyz,X-Custom=value=with=equals")
	got := getMapEnv("MOTIONLOOP_TEST_MAP")
	if got["Authorization"] != "Bearer xyz" {
		t.Fatalf("expected Authorization header parsed, got %v", got)
	}
	if got["X-Custom"] != "value=with=equals" {
		t.Fatalf("expected X-Custom to keep embedded '=', got %v", got)
	}
}

func TestGetMapEnvEmptyWhenUnset(t *testing.T) {
	t.Setenv("MOTIONLOOP_TEST_MAP_EMPTY", "")
	got := getMapEnv("MOTIONLOOP_TEST_MAP_EMPTY")
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
