// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package loopctl

import (
	"context"
	"math/rand"
	"testing"
)

func TestPickExploitPromptExcludesRecent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	good := []string{"a", "b", "c"}
	recent := []string{"a", "b"}

	for i := 0; i < 20; i++ {
		got := pickExploitPrompt(rng, good, recent)
		if got != "c" {
			t.Fatalf("expected only unexcluded candidate 'c', got %q", got)
		}
	}
}

func TestPickExploitPromptDropsExclusionWhenAllExcluded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	good := []string{"a", "b"}
	recent := []string{"a", "b"}

	got := pickExploitPrompt(rng, good, recent)
	if got != "a" && got != "b" {
		t.Fatalf("expected fallback to the full good_prompts list, got %q", got)
	}
}

func TestPickExploitPromptEmptyGood(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := pickExploitPrompt(rng, nil, nil); got != "" {
		t.Fatalf("expected empty string for empty good_prompts, got %q", got)
	}
}

func TestPickExploitPromptOnlyConsidersLastWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	good := []string{"old-one"}
	recent := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		recent = append(recent, "filler")
	}
	recent[0] = "old-one" // outside the last-20 window

	got := pickExploitPrompt(rng, good, recent)
	if got != "old-one" {
		t.Fatalf("expected the only candidate 'old-one' since it falls outside the recent window, got %q", got)
	}
}

func TestPromoteAddsOnceAndCaps(t *testing.T) {
	good := promote(nil, "x")
	good = promote(good, "x") // duplicate, should not grow
	if len(good) != 1 {
		t.Fatalf("expected good_prompts to dedupe, got %v", good)
	}

	good = promote(good, "")
	if len(good) != 1 {
		t.Fatalf("empty prompt should be a no-op, got %v", good)
	}

	for i := 0; i < loopStateMaxEntries+10; i++ {
		good = promote(good, string(rune('a'+i%26))+string(rune(i)))
	}
	if len(good) != loopStateMaxEntries {
		t.Fatalf("expected good_prompts capped at %d, got %d", loopStateMaxEntries, len(good))
	}
}

func TestAppendCappedSkipsEmpty(t *testing.T) {
	var list []string
	appendCapped(&list, "")
	if len(list) != 0 {
		t.Fatalf("expected empty prompt to be skipped, got %v", list)
	}
	appendCapped(&list, "a")
	if len(list) != 1 || list[0] != "a" {
		t.Fatalf("expected [a], got %v", list)
	}
}

func TestAppendCappedEnforcesLimit(t *testing.T) {
	var list []string
	for i := 0; i < loopStateMaxEntries+5; i++ {
		appendCapped(&list, "p")
	}
	if len(list) != loopStateMaxEntries {
		t.Fatalf("expected list capped at %d, got %d", loopStateMaxEntries, len(list))
	}
}

func TestWithBackoffSucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := withBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}
