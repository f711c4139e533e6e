// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package loopctl implements the Loop Controller: a single long-running
// suture.Service that drives the learning cycle described in spec §4.E —
// pick a prompt (exploit known-good, or explore new ground), submit a job
// to the Ingestion API, wait for it to complete, record a learning run, and
// update its own single-writer state blob in the KV side-channel.
package loopctl

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/chiku524/motionloop/internal/database"
	"github.com/chiku524/motionloop/internal/kv"
	"github.com/chiku524/motionloop/internal/logging"
	"github.com/chiku524/motionloop/internal/metrics"
	"github.com/chiku524/motionloop/internal/models"
	"github.com/chiku524/motionloop/internal/namealloc"
)

const (
	minDelaySeconds     = 5
	jobPollInterval     = time.Second
	jobPollAttempts     = 300
	recentWindow        = 20
	maxBackoffTries     = 5
	loopStateMaxEntries = 200
)

// Controller is the Loop Controller. It owns the loop_state KV blob
// exclusively (spec §3 "single writer"); config is refreshed from the same
// side-channel every tick so an operator's POST /loop/config takes effect
// without a restart.
type Controller struct {
	kv      *kv.Store
	db      *database.DB
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker[*http.Response]
	rng     *rand.Rand
	seeds   []string
}

// New constructs a Controller. baseURL points at this same process's own
// Ingestion API (config.LoopConfig.SelfAPIBaseURL); rngSeed seeds the
// explore/exploit coin flip and prompt draws deterministically for tests.
func New(kvStore *kv.Store, db *database.DB, baseURL string, rngSeed int64) *Controller {
	settings := gobreaker.Settings{
		Name:        "loopctl-self-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
	}
	return &Controller{
		kv:      kvStore,
		db:      db,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker[*http.Response](settings),
		rng:     rand.New(rand.NewSource(rngSeed)),
		seeds:   defaultSeedPrompts,
	}
}

// String identifies the service in supervisor/suture logging.
func (c *Controller) String() string {
	return "loop-controller"
}

// Serve runs the tick loop until ctx is canceled. Suture restarts it on
// panic per the parent supervisor's backoff policy; a single bad tick is
// additionally contained inside tick itself (spec §4.E "must never crash on
// a single bad tick").
func (c *Controller) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delay := c.tick(ctx)
		if delay < minDelaySeconds {
			delay = minDelaySeconds
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(delay) * time.Second):
		}
	}
}

// tick runs one iteration of the 8-step sequence and returns the delay (in
// seconds) to sleep before the next one.
func (c *Controller) tick(ctx context.Context) int {
	cfg, err := c.loadConfig()
	if err != nil {
		logging.Error().Err(err).Msg("loop controller: failed to load config")
		return minDelaySeconds
	}
	if !cfg.Enabled {
		return cfg.DelaySeconds
	}

	state, err := c.loadState()
	if err != nil {
		logging.Error().Err(err).Msg("loop controller: failed to load state")
		return cfg.DelaySeconds
	}

	exploit := c.rng.Float64() < cfg.ExploitRatio
	if exploit && len(state.GoodPrompts) == 0 {
		exploit = false
	}

	var prompt, workflow string
	if exploit {
		prompt = pickExploitPrompt(c.rng, state.GoodPrompts, state.RecentPrompts)
		workflow = "exploiter"
		state.ExploitCount++
	} else {
		prompt = c.pickExplorePrompt(ctx)
		workflow = "explorer"
		state.ExploreCount++
	}

	jobID, err := c.createJobWithRetry(ctx, prompt, cfg.DurationSeconds, workflow)
	if err != nil {
		logging.Error().Err(err).Str("prompt", prompt).Msg("loop controller: failed to create job")
		c.finishTick(&state, prompt, "", cfg.DelaySeconds)
		return cfg.DelaySeconds
	}

	completed, err := c.pollJob(ctx, jobID)
	if err != nil {
		logging.Warn().Err(err).Str("job_id", jobID).Msg("loop controller: job poll failed or timed out")
		c.finishTick(&state, prompt, jobID, cfg.DelaySeconds)
		return cfg.DelaySeconds
	}

	if completed {
		metrics.TotalRuns.Inc()
		if err := c.commitLearningRun(ctx, jobID, prompt, workflow); err != nil {
			logging.Warn().Err(err).Str("job_id", jobID).Msg("loop controller: failed to commit learning run")
		}
		if c.jobHasDiscoveries(ctx, jobID) {
			state.GoodPrompts = promote(state.GoodPrompts, prompt)
		}
	}

	c.finishTick(&state, prompt, jobID, cfg.DelaySeconds)
	return cfg.DelaySeconds
}

// finishTick applies step 8 of the tick sequence: append to recent_prompts,
// bump counters, and persist the single-writer state blob.
func (c *Controller) finishTick(state *models.LoopState, prompt, jobID string, _ int) {
	appendCapped(&state.RecentPrompts, prompt)
	state.LastRunAt = time.Now()
	state.LastPrompt = prompt
	if jobID != "" {
		state.LastJobID = jobID
	}
	state.RunCount++
	state.Version++
	if err := c.kv.SetLoopState(state); err != nil {
		logging.Warn().Err(err).Msg("loop controller: failed to save state")
	}
}

// pickExploitPrompt draws a random good_prompts entry not present in the
// last ~20 recent_prompts; if every entry is excluded, the exclusion is
// dropped (spec §4.E step 3).
func pickExploitPrompt(rng *rand.Rand, good, recent []string) string {
	excluded := make(map[string]bool, recentWindow)
	start := 0
	if len(recent) > recentWindow {
		start = len(recent) - recentWindow
	}
	for _, p := range recent[start:] {
		excluded[p] = true
	}

	candidates := make([]string, 0, len(good))
	for _, p := range good {
		if !excluded[p] {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = good
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))]
}

// pickExplorePrompt synthesizes a candidate from the interpretation
// registry, falling back to the curated seed list, and rejects gibberish
// candidates in strict mode (spec §4.E step 3).
func (c *Controller) pickExplorePrompt(ctx context.Context) string {
	prompts, err := c.db.ListInterpretationPrompts(ctx, 50)
	if err == nil && len(prompts) > 0 {
		for _, i := range c.rng.Perm(len(prompts)) {
			if p := prompts[i]; p != "" && !namealloc.IsGibberish(p) {
				return p
			}
		}
	}
	return c.seeds[c.rng.Intn(len(c.seeds))]
}

func promote(good []string, prompt string) []string {
	if prompt == "" {
		return good
	}
	for _, p := range good {
		if p == prompt {
			return good
		}
	}
	good = append(good, prompt)
	if len(good) > loopStateMaxEntries {
		good = good[len(good)-loopStateMaxEntries:]
	}
	return good
}

func appendCapped(list *[]string, prompt string) {
	if prompt == "" {
		return
	}
	*list = append(*list, prompt)
	if len(*list) > loopStateMaxEntries {
		*list = (*list)[len(*list)-loopStateMaxEntries:]
	}
}

// withBackoff retries fn with exponential backoff (1/2/4/8s, max 5 tries)
// per spec §4.E's failure-modes contract for transient network errors.
func withBackoff(ctx context.Context, fn func() error) error {
	delay := time.Second
	var err error
	for attempt := 0; attempt < maxBackoffTries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxBackoffTries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("exhausted %d retries: %w", maxBackoffTries, err)
}
