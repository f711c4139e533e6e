// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package loopctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chiku524/motionloop/internal/kv"
	"github.com/chiku524/motionloop/internal/models"
)

// do executes an HTTP request through the circuit breaker so a wedged
// Ingestion API short-circuits future calls instead of piling up latency
// (spec §4.E, §5 "suspension points").
func (c *Controller) do(req *http.Request) (*http.Response, error) {
	return c.cb.Execute(func() (*http.Response, error) {
		return c.client.Do(req)
	})
}

// createJobWithRetry posts a new job, retrying transient failures with
// exponential backoff (spec §4.E step 4, failure modes).
func (c *Controller) createJobWithRetry(ctx context.Context, prompt string, durationSeconds int, workflowType string) (string, error) {
	if prompt == "" {
		return "", errors.New("loopctl: empty prompt")
	}
	body, err := json.Marshal(map[string]interface{}{
		"prompt":           prompt,
		"duration_seconds": float64(durationSeconds),
		"workflow_type":    workflowType,
	})
	if err != nil {
		return "", err
	}

	var jobID string
	err = withBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("create job: unexpected status %d", resp.StatusCode)
		}

		var job models.Job
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			return err
		}
		jobID = job.ID
		return nil
	})
	return jobID, err
}

// pollJob polls GET /jobs/:id at 1s intervals up to 300 attempts (spec
// §4.E step 5). It returns (true, nil) on completion, (false, nil) on a
// terminal "failed" status, and an error on timeout or transport failure.
func (c *Controller) pollJob(ctx context.Context, jobID string) (bool, error) {
	for attempt := 0; attempt < jobPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(jobPollInterval):
		}

		job, err := c.fetchJob(ctx, jobID)
		if err != nil {
			continue // transient poll errors are tolerated within the attempt budget
		}
		switch job.Status {
		case models.JobCompleted:
			return true, nil
		case models.JobFailed:
			return false, nil
		}
	}
	return false, fmt.Errorf("loopctl: job %s did not complete within %d attempts", jobID, jobPollAttempts)
}

func (c *Controller) fetchJob(ctx context.Context, jobID string) (*models.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get job: unexpected status %d", resp.StatusCode)
	}
	var job models.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// commitLearningRun records a learning run for the completed job (spec
// §4.E step 6). The spec/analysis payloads an external renderer would
// normally have attached discoveries alongside; absent that collaborator,
// the controller commits a minimal self-authored summary describing the
// tick that produced the job.
func (c *Controller) commitLearningRun(ctx context.Context, jobID, prompt, workflow string) error {
	body, err := json.Marshal(map[string]interface{}{
		"job_id":   jobID,
		"prompt":   prompt,
		"spec":     fmt.Sprintf(`{"workflow_type":%q}`, workflow),
		"analysis": `{"source":"loop_controller"}`,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/learning", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("commit learning run: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// jobHasDiscoveries checks whether the completed job produced any registry
// rows, the signal spec §4.E step 7 promotes a prompt to good_prompts on.
func (c *Controller) jobHasDiscoveries(ctx context.Context, jobID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/loop/diagnostics?last=50", nil)
	if err != nil {
		return false
	}
	resp, err := c.do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var diagnostics []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&diagnostics); err != nil {
		return false
	}
	for _, d := range diagnostics {
		if id, _ := d["job_id"].(string); id == jobID {
			has, _ := d["has_discovery"].(bool)
			return has
		}
	}
	return false
}

// loadConfig reads the live loop config from the KV side-channel, falling
// back to the zero-value (disabled, all-zero ranges) when unset — the
// operator must POST /loop/config at least once before the loop runs.
func (c *Controller) loadConfig() (models.LoopConfig, error) {
	var cfg models.LoopConfig
	if err := c.kv.GetLoopConfig(&cfg); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return models.LoopConfig{}, nil
		}
		return models.LoopConfig{}, err
	}
	return cfg, nil
}

func (c *Controller) loadState() (models.LoopState, error) {
	var state models.LoopState
	if err := c.kv.GetLoopState(&state); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return models.LoopState{}, nil
		}
		return models.LoopState{}, err
	}
	return state, nil
}

// defaultSeedPrompts is the curated fallback list for explore mode when the
// interpretation registry is empty or every candidate is gibberish.
var defaultSeedPrompts = []string{
	"a slow dolly through a foggy pine forest at dawn",
	"neon rain over an empty city intersection",
	"macro shot of ice crystals forming on glass",
	"handheld footage of a lantern-lit night market",
	"time-lapse clouds over a desert mesa",
	"underwater light rays through kelp",
	"a single candle flame in a dark room",
	"aerial view of a river delta at golden hour",
}
