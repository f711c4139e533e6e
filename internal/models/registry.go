// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package models

import "time"

// ColorPrimitives is the fixed set of 16 color primaries; depth_breakdown for
// any color discovery may only use these keys (spec §3 invariant 3, §9
// "Color primitive set" consolidation note).
var ColorPrimitives = [16]string{
	"black", "white", "red", "orange", "yellow", "green", "teal", "blue",
	"purple", "pink", "brown", "gray", "cyan", "magenta", "gold", "silver",
}

// IsColorPrimitive reports whether key is one of the 16 fixed color primaries.
func IsColorPrimitive(key string) bool {
	for _, p := range ColorPrimitives {
		if p == key {
			return true
		}
	}
	return false
}

// SoundPrimitives is the fixed set of 4 sound primaries used by the static
// sound registry and coverage reporting.
var SoundPrimitives = [4]string{"silence", "tone", "rhythm", "noise"}

// StaticColor is a per-frame color discovery keyed by "r,g,b".
type StaticColor struct {
	Key            string             `json:"key"`
	R              int                `json:"r"`
	G              int                `json:"g"`
	B              int                `json:"b"`
	Count          int                `json:"count"`
	Name           string             `json:"name"`
	DepthBreakdown map[string]float64 `json:"depth_breakdown"`
	OpacityPct     *float64           `json:"opacity_pct,omitempty"`
	ThemeBreakdown map[string]float64 `json:"theme_breakdown,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// StaticSound is a per-sample sound discovery keyed by
// "<strength>_<tone>_<timbre>".
type StaticSound struct {
	Key            string             `json:"key"`
	Amplitude      float64            `json:"amplitude"`
	StrengthPct    float64            `json:"strength_pct"`
	Tone           string             `json:"tone"`
	Timbre         string             `json:"timbre"`
	Count          int                `json:"count"`
	Name           string             `json:"name"`
	DepthBreakdown map[string]float64 `json:"depth_breakdown"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// BlendDomain names one of the thirteen blended-registry tables.
type BlendDomain string

const (
	DomainColor        BlendDomain = "learned_color"
	DomainMotion       BlendDomain = "learned_motion"
	DomainLighting     BlendDomain = "learned_lighting"
	DomainComposition  BlendDomain = "learned_composition"
	DomainGraphics     BlendDomain = "learned_graphics"
	DomainTemporal     BlendDomain = "learned_temporal"
	DomainTechnical    BlendDomain = "learned_technical"
	DomainTime         BlendDomain = "learned_time"
	DomainGradient     BlendDomain = "learned_gradient"
	DomainCamera       BlendDomain = "learned_camera"
	DomainTransition   BlendDomain = "learned_transition"
	DomainDepth        BlendDomain = "learned_depth"
	DomainAudioSemantic BlendDomain = "learned_audio_semantic"
)

// BlendDomains lists every blended-registry table name, used for schema
// creation and for the generic per-domain handler.
var BlendDomains = []BlendDomain{
	DomainColor, DomainMotion, DomainLighting, DomainComposition, DomainGraphics,
	DomainTemporal, DomainTechnical, DomainTime, DomainGradient, DomainCamera,
	DomainTransition, DomainDepth, DomainAudioSemantic,
}

// BlendedRow is the common shape shared by every learned_* table.
type BlendedRow struct {
	ProfileKey       string    `json:"profile_key"`
	Count            int       `json:"count"`
	SourcesJSON      string    `json:"sources_json"` // array of source prompts, truncated
	Name             string    `json:"name"`
	DepthBreakdownJS string    `json:"depth_breakdown_json,omitempty"`
	MotionLevel      *float64  `json:"motion_level,omitempty"`
	MotionStd        *float64  `json:"motion_std,omitempty"`
	MotionTrend      string    `json:"motion_trend,omitempty"`
	Direction        string    `json:"direction,omitempty"`
	Rhythm           string    `json:"rhythm,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LearnedBlend is the uncategorized fallback table: always inserted, never
// deduplicated, name uniqueness resolved via the allocator.
type LearnedBlend struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Domain           string    `json:"domain"`
	InputsJSON       string    `json:"inputs_json"`
	OutputJSON       string    `json:"output_json"`
	PrimitiveDepthsJS string   `json:"primitive_depths_json,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NarrativeAspect enumerates the semantic narrative aspects.
type NarrativeAspect string

const (
	AspectGenre     NarrativeAspect = "genre"
	AspectMood      NarrativeAspect = "mood"
	AspectThemes    NarrativeAspect = "themes"
	AspectPlots     NarrativeAspect = "plots"
	AspectSettings  NarrativeAspect = "settings"
	AspectStyle     NarrativeAspect = "style"
	AspectSceneType NarrativeAspect = "scene_type"
)

// ValidNarrativeAspect reports whether a is an accepted aspect.
func ValidNarrativeAspect(a string) bool {
	switch NarrativeAspect(a) {
	case AspectGenre, AspectMood, AspectThemes, AspectPlots, AspectSettings, AspectStyle, AspectSceneType:
		return true
	default:
		return false
	}
}

// NarrativeOriginSizes gives the fixed cardinality of each aspect's origin
// set, used by the coverage endpoint (spec §4.F "Coverage").
var NarrativeOriginSizes = map[NarrativeAspect]int{
	AspectGenre: 7, AspectMood: 7, AspectStyle: 5, AspectPlots: 4,
	AspectSettings: 8, AspectThemes: 8, AspectSceneType: 8,
}

// NarrativeEntry is a semantic registry row keyed by (aspect, entry_key).
type NarrativeEntry struct {
	Aspect    NarrativeAspect `json:"aspect"`
	EntryKey  string          `json:"entry_key"`
	Value     string          `json:"value"`
	Name      string          `json:"name,omitempty"`
	Count     int             `json:"count"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LinguisticVariant maps a surface span to its canonical form, unique on
// (span, domain).
type LinguisticVariant struct {
	Span        string    `json:"span"`
	Canonical   string    `json:"canonical"`
	Domain      string    `json:"domain"`
	VariantType string    `json:"variant_type"`
	Count       int       `json:"count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InterpretationSource names who queued an interpretation.
type InterpretationSource string

const (
	SourceWeb      InterpretationSource = "web"
	SourceWorker   InterpretationSource = "worker"
	SourceLoop     InterpretationSource = "loop"
	SourceBackfill InterpretationSource = "backfill"
)

// InterpretationStatus is pending until a worker patches in an instruction.
type InterpretationStatus string

const (
	InterpretationPending InterpretationStatus = "pending"
	InterpretationDone    InterpretationStatus = "done"
)

// Interpretation is a queued prompt awaiting a structured instruction.
type Interpretation struct {
	ID          string                `json:"id"`
	Prompt      string                `json:"prompt"`
	Instruction *string               `json:"instruction,omitempty"`
	Source      InterpretationSource  `json:"source"`
	Status      InterpretationStatus  `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// LoopState is the Loop Controller's single-writer KV blob.
type LoopState struct {
	Version       int64     `json:"version"` // monotonic, defense-in-depth against out-of-order writers
	RunCount      int       `json:"run_count"`
	GoodPrompts   []string  `json:"good_prompts"`   // cap 200, each cap 500 chars
	RecentPrompts []string  `json:"recent_prompts"` // cap 200
	DurationBase  float64   `json:"duration_base"`
	ExploitCount  int       `json:"exploit_count"`
	ExploreCount  int       `json:"explore_count"`
	LastRunAt     time.Time `json:"last_run_at"`
	LastPrompt    string    `json:"last_prompt"`
	LastJobID     string    `json:"last_job_id"`
}

// LoopConfig is the Loop Controller's mutable, validated-range configuration.
type LoopConfig struct {
	Enabled         bool    `json:"enabled"`
	DelaySeconds    int     `json:"delay_seconds"`    // [0,600]
	ExploitRatio    float64 `json:"exploit_ratio"`    // [0,1]
	DurationSeconds int     `json:"duration_seconds"` // [1,60]
}

// Validate checks LoopConfig's ranges per spec §3.
func (c LoopConfig) Validate() error {
	if c.DelaySeconds < 0 || c.DelaySeconds > 600 {
		return errRange("delay_seconds", "0..600")
	}
	if c.ExploitRatio < 0 || c.ExploitRatio > 1 {
		return errRange("exploit_ratio", "0..1")
	}
	if c.DurationSeconds < 1 || c.DurationSeconds > 60 {
		return errRange("duration_seconds", "1..60")
	}
	return nil
}

func errRange(field, rng string) error {
	return &RangeError{Field: field, Range: rng}
}

// RangeError reports a field whose value fell outside its allowed range.
type RangeError struct {
	Field string
	Range string
}

func (e *RangeError) Error() string {
	return e.Field + " must be in range " + e.Range
}
