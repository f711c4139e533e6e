// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	c := defaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateDatabaseRejectsEmptyPath(t *testing.T) {
	c := defaultConfig()
	c.Database.Path = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected empty DATABASE_PATH to be rejected")
	}
}

func TestValidateDatabaseRejectsNonPositiveThreads(t *testing.T) {
	c := defaultConfig()
	c.Database.Threads = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected DATABASE_THREADS=0 to be rejected")
	}
}

func TestValidateKVRequiresDirUnlessInMemory(t *testing.T) {
	c := defaultConfig()
	c.KV.Dir = ""
	c.KV.InMemory = false
	if err := c.Validate(); err == nil {
		t.Fatalf("expected empty KV_DIR without KV_IN_MEMORY to be rejected")
	}

	c.KV.InMemory = true
	if err := c.Validate(); err != nil {
		t.Fatalf("expected KV_IN_MEMORY=true to waive KV_DIR, got %v", err)
	}
}

func TestValidateServerRejectsOutOfRangePort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		c := defaultConfig()
		c.Server.Port = port
		if err := c.Validate(); err == nil {
			t.Fatalf("expected port %d to be rejected", port)
		}
	}
}

func TestValidateAPIRejectsMaxBelowDefaultPageSize(t *testing.T) {
	c := defaultConfig()
	c.API.DefaultPageSize = 100
	c.API.MaxPageSize = 50
	if err := c.Validate(); err == nil {
		t.Fatalf("expected MaxPageSize < DefaultPageSize to be rejected")
	}
}

func TestValidateSecurityRejectsMixedWildcardCORS(t *testing.T) {
	c := defaultConfig()
	c.Security.CORSOrigins = []string{"*", "https://example.com"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected mixed wildcard + explicit CORS origins to be rejected")
	}
}

func TestIsProductionReflectsCORSLockdown(t *testing.T) {
	c := defaultConfig()
	if c.IsProduction() {
		t.Fatalf("expected wildcard CORS default to not be considered production")
	}
	c.Security.CORSOrigins = []string{"https://example.com"}
	if !c.IsProduction() {
		t.Fatalf("expected locked-down CORS origins to be considered production")
	}
}

func TestValidateNATSRequiresURLAndStreamWhenEnabled(t *testing.T) {
	c := defaultConfig()
	c.NATS.Enabled = true
	c.NATS.URL = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected missing NATS_URL to be rejected when enabled")
	}

	c.NATS.URL = "nats://127.0.0.1:4222"
	c.NATS.StreamName = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected missing NATS_STREAM_NAME to be rejected when enabled")
	}
}

func TestValidateLoggingRejectsUnknownLevel(t *testing.T) {
	c := defaultConfig()
	c.Logging.Level = "verbose"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected unrecognized logging level to be rejected")
	}

	c.Logging.Level = "DEBUG"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected logging level matching case-insensitively, got %v", err)
	}
}

func TestValidateLoopRejectsOutOfRangeExploreProbability(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01} {
		c := defaultConfig()
		c.Loop.ExploreProbability = p
		if err := c.Validate(); err == nil {
			t.Fatalf("expected explore probability %f to be rejected", p)
		}
	}
}
