// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package models defines the registry store's row types: jobs, learning runs,
// events, feedback, the pure/blended/semantic discovery registries, name
// reserve, linguistic variants, interpretations, and the loop state/config KV
// blobs.
package models

import "time"

// JobStatus enumerates the lifecycle of a Job. pending -> completed is
// terminal once a blob is attached; pending -> failed is terminal with no
// retries — the scheduler re-queues by creating a new job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// WorkflowType tags who originated a job.
type WorkflowType string

const (
	WorkflowExplorer  WorkflowType = "explorer"
	WorkflowExploiter WorkflowType = "exploiter"
	WorkflowMain      WorkflowType = "main"
	WorkflowWeb       WorkflowType = "web"
)

// ValidWorkflowType reports whether wt is one of the accepted enum values, or
// empty (workflow_type is optional on job creation).
func ValidWorkflowType(wt string) bool {
	switch WorkflowType(wt) {
	case "", WorkflowExplorer, WorkflowExploiter, WorkflowMain, WorkflowWeb:
		return true
	default:
		return false
	}
}

// Job is a unit of work: created pending, flipped to completed when an
// uploader attaches a blob, never deleted. Invariant: Status == Completed
// implies R2Key is non-nil.
type Job struct {
	ID              string       `json:"id"`
	Prompt          string       `json:"prompt"`
	DurationSeconds *float64     `json:"duration_seconds,omitempty"`
	Status          JobStatus    `json:"status"`
	R2Key           *string      `json:"r2_key,omitempty"`
	WorkflowType    WorkflowType `json:"workflow_type,omitempty"`
	DownloadURL     string       `json:"download_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// LearningRun is an immutable record of one interpret/generate/analyze cycle.
type LearningRun struct {
	ID        int64     `json:"id"`
	JobID     *string   `json:"job_id,omitempty"`
	Prompt    string    `json:"prompt"`
	Spec      string    `json:"spec"`     // serialized instruction
	Analysis  string    `json:"analysis"` // serialized metrics
	CreatedAt time.Time `json:"created_at"`
}

// EventType enumerates the append-only Event log's allowed kinds.
type EventType string

const (
	EventPromptSubmitted EventType = "prompt_submitted"
	EventJobCompleted    EventType = "job_completed"
	EventVideoPlayed     EventType = "video_played"
	EventVideoAbandoned  EventType = "video_abandoned"
	EventDownloadClicked EventType = "download_clicked"
	EventError           EventType = "error"
	EventFeedback        EventType = "feedback"
)

// ValidEventType reports whether et is one of the allowed event kinds.
func ValidEventType(et string) bool {
	switch EventType(et) {
	case EventPromptSubmitted, EventJobCompleted, EventVideoPlayed, EventVideoAbandoned,
		EventDownloadClicked, EventError, EventFeedback:
		return true
	default:
		return false
	}
}

// Event is an append-only log row.
type Event struct {
	ID        int64     `json:"id"`
	EventType EventType `json:"event_type"`
	JobID     *string   `json:"job_id,omitempty"`
	Payload   string    `json:"payload,omitempty"` // opaque JSON
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is a 1=down/2=up rating, unique per job (upsert).
type Feedback struct {
	JobID     string    `json:"job_id"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRating reports whether r is one of the two allowed feedback ratings.
func ValidRating(r int) bool {
	return r == 1 || r == 2
}

// DiscoveryRun records an attempted discovery-ingestion, even when all
// per-category counts are zero, so diagnostics can distinguish "attempted"
// from "never tried".
type DiscoveryRun struct {
	ID        int64     `json:"id"`
	JobID     *string   `json:"job_id,omitempty"`
	ResultsJS string    `json:"results_json"`
	CreatedAt time.Time `json:"created_at"`
}
