// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package kv

import (
	"errors"
	"strings"
	"testing"

	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.KVConfig{InMemory: true, WriteRateLimit: 1, WriteBurst: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetLoopStateNotFoundBeforeFirstWrite(t *testing.T) {
	s := newTestStore(t)

	var state models.LoopState
	err := s.GetLoopState(&state)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetAndGetLoopStateRoundTrips(t *testing.T) {
	s := newTestStore(t)

	want := models.LoopState{RunCount: 3, LastPrompt: "aerial view of a river delta"}
	if err := s.SetLoopState(&want); err != nil {
		t.Fatalf("SetLoopState: %v", err)
	}

	var got models.LoopState
	if err := s.GetLoopState(&got); err != nil {
		t.Fatalf("GetLoopState: %v", err)
	}
	if got.RunCount != want.RunCount || got.LastPrompt != want.LastPrompt {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSetLoopStateEnforcesWriteBudget(t *testing.T) {
	s := newTestStore(t)

	state := models.LoopState{RunCount: 1}
	if err := s.SetLoopState(&state); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}

	err := s.SetLoopState(&state)
	if err == nil || !strings.Contains(err.Error(), "write budget exceeded for key") {
		t.Fatalf("expected write-budget error on immediate second write, got %v", err)
	}
}

func TestLoopConfigAndStatsCacheUseDistinctKeys(t *testing.T) {
	s := newTestStore(t)

	cfg := models.LoopConfig{Enabled: true, DelaySeconds: 30, ExploitRatio: 0.5, DurationSeconds: 8}
	if err := s.SetLoopConfig(&cfg); err != nil {
		t.Fatalf("SetLoopConfig: %v", err)
	}

	stats := map[string]int{"total_discoveries": 42}
	if err := s.SetCachedStats(&stats); err != nil {
		t.Fatalf("SetCachedStats: %v", err)
	}

	var gotCfg models.LoopConfig
	if err := s.GetLoopConfig(&gotCfg); err != nil {
		t.Fatalf("GetLoopConfig: %v", err)
	}
	if gotCfg.DelaySeconds != 30 {
		t.Fatalf("expected delay_seconds=30, got %+v", gotCfg)
	}

	var gotStats map[string]int
	if err := s.GetCachedStats(&gotStats); err != nil {
		t.Fatalf("GetCachedStats: %v", err)
	}
	if gotStats["total_discoveries"] != 42 {
		t.Fatalf("expected total_discoveries=42, got %v", gotStats)
	}

	var state models.LoopState
	if err := s.GetLoopState(&state); !errors.Is(err, ErrNotFound) {
		t.Fatalf("loop_state should remain unset after writing loop_config/stats, got %v", err)
	}
}
