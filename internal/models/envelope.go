// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package models

// APIError is the shared error envelope every handler returns on failure,
// per spec §6: `{error: string, details?: string}`.
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DiscoveryCategory enumerates the arrays accepted by POST
// /knowledge/discoveries.
type DiscoveryCategory string

const (
	CategoryStaticColors   DiscoveryCategory = "static_colors"
	CategoryStaticSound    DiscoveryCategory = "static_sound"
	CategoryColors         DiscoveryCategory = "colors"
	CategoryBlends         DiscoveryCategory = "blends"
	CategoryMotion         DiscoveryCategory = "motion"
	CategoryLighting       DiscoveryCategory = "lighting"
	CategoryComposition    DiscoveryCategory = "composition"
	CategoryGraphics       DiscoveryCategory = "graphics"
	CategoryTemporal       DiscoveryCategory = "temporal"
	CategoryTechnical      DiscoveryCategory = "technical"
	CategoryAudioSemantic  DiscoveryCategory = "audio_semantic"
	CategoryTime           DiscoveryCategory = "time"
	CategoryGradient       DiscoveryCategory = "gradient"
	CategoryCamera         DiscoveryCategory = "camera"
	CategoryTransition     DiscoveryCategory = "transition"
	CategoryDepth          DiscoveryCategory = "depth"
	CategoryNarrative      DiscoveryCategory = "narrative"
)

// DiscoveryItem is a single loosely-typed payload item; which fields are
// meaningful depends on the category it arrived under.
type DiscoveryItem struct {
	Key            string             `json:"key,omitempty"`
	R              *int               `json:"r,omitempty"`
	G              *int               `json:"g,omitempty"`
	B              *int               `json:"b,omitempty"`
	Amplitude      *float64           `json:"amplitude,omitempty"`
	StrengthPct    *float64           `json:"strength_pct,omitempty"`
	Tone           string             `json:"tone,omitempty"`
	Timbre         string             `json:"timbre,omitempty"`
	Name           string             `json:"name,omitempty"`
	DepthBreakdown map[string]float64 `json:"depth_breakdown,omitempty"`
	SourcePrompt   string             `json:"source_prompt,omitempty"`
	MotionLevel    *float64           `json:"motion_level,omitempty"`
	MotionStd      *float64           `json:"motion_std,omitempty"`
	MotionTrend    string             `json:"motion_trend,omitempty"`
	Direction      string             `json:"direction,omitempty"`
	Rhythm         string             `json:"rhythm,omitempty"`
	Domain         string             `json:"domain,omitempty"`
	Inputs         map[string]any     `json:"inputs,omitempty"`
	Output         map[string]any     `json:"output,omitempty"`
	Aspect         string             `json:"aspect,omitempty"`
	EntryKey       string             `json:"entry_key,omitempty"`
	Value          string             `json:"value,omitempty"`
}

// DiscoveriesRequest is the envelope accepted by POST /knowledge/discoveries.
type DiscoveriesRequest struct {
	JobID         string                             `json:"job_id,omitempty"`
	StaticColors  []DiscoveryItem                    `json:"static_colors,omitempty"`
	StaticSound   []DiscoveryItem                    `json:"static_sound,omitempty"`
	Colors        []DiscoveryItem                    `json:"colors,omitempty"`
	Blends        []DiscoveryItem                    `json:"blends,omitempty"`
	Motion        []DiscoveryItem                    `json:"motion,omitempty"`
	Lighting      []DiscoveryItem                    `json:"lighting,omitempty"`
	Composition   []DiscoveryItem                    `json:"composition,omitempty"`
	Graphics      []DiscoveryItem                    `json:"graphics,omitempty"`
	Temporal      []DiscoveryItem                    `json:"temporal,omitempty"`
	Technical     []DiscoveryItem                    `json:"technical,omitempty"`
	AudioSemantic []DiscoveryItem                    `json:"audio_semantic,omitempty"`
	Time          []DiscoveryItem                    `json:"time,omitempty"`
	Gradient      []DiscoveryItem                    `json:"gradient,omitempty"`
	Camera        []DiscoveryItem                    `json:"camera,omitempty"`
	Transition    []DiscoveryItem                    `json:"transition,omitempty"`
	Depth         []DiscoveryItem                    `json:"depth,omitempty"`
	Narrative     map[string][]DiscoveryItem         `json:"narrative,omitempty"` // keyed by aspect
}

// DiscoveriesResponse reports what was accepted, per category, and whether
// the 14-item cap truncated the request.
type DiscoveriesResponse struct {
	Truncated bool           `json:"truncated"`
	Results   map[string]int `json:"results"`
}

// JobCreateRequest is the POST /jobs body.
type JobCreateRequest struct {
	Prompt          string   `json:"prompt"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	WorkflowType    string   `json:"workflow_type,omitempty"`
}

// FeedbackRequest is the POST /jobs/:id/feedback body.
type FeedbackRequest struct {
	Rating int `json:"rating"`
}

// LearningRunRequest is the POST /learning body.
type LearningRunRequest struct {
	JobID    string `json:"job_id,omitempty"`
	Prompt   string `json:"prompt"`
	Spec     string `json:"spec"`
	Analysis string `json:"analysis"`
}

// EventRequest is the POST /events body.
type EventRequest struct {
	EventType string `json:"event_type"`
	JobID     string `json:"job_id,omitempty"`
	Payload   string `json:"payload,omitempty"`
}

// InterpretQueueRequest is the POST /interpret/queue body.
type InterpretQueueRequest struct {
	Prompt string `json:"prompt"`
	Source string `json:"source,omitempty"`
}

// InterpretPatchRequest is the PATCH /interpret/:id body.
type InterpretPatchRequest struct {
	Instruction string `json:"instruction"`
}

// InterpretationRequest is one item of POST /interpretations[/batch].
type InterpretationRequest struct {
	Prompt      string `json:"prompt"`
	Instruction string `json:"instruction,omitempty"`
	Source      string `json:"source,omitempty"`
}

// BackfillUpdate is one item of POST /registries/backfill-depths.
type BackfillUpdate struct {
	Table          string             `json:"table"`
	ID             string             `json:"id"`
	DepthBreakdown map[string]float64 `json:"depth_breakdown"`
}

// BackfillDepthsRequest is the POST /registries/backfill-depths body.
type BackfillDepthsRequest struct {
	Updates []BackfillUpdate `json:"updates"`
}

// ProgressSnapshot is the GET /loop/progress response body.
type ProgressSnapshot struct {
	PrecisionPct     float64 `json:"precision_pct"`
	DiscoveryRatePct float64 `json:"discovery_rate_pct"`
	RepetitionScore  float64 `json:"repetition_score"`
	TargetPct        float64 `json:"target_pct"`
	TotalRuns        int     `json:"total_runs"`
}

// CoverageSnapshot is the GET /registries/coverage response body.
type CoverageSnapshot struct {
	StaticColorCoveragePct float64            `json:"static_color_coverage_pct"`
	NarrativeCoverage      map[string]float64 `json:"narrative_coverage"`
	StaticSoundPresent     map[string]bool    `json:"static_sound_present"`
}

// HealthResponse is the body of GET /health and GET /api/health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}
