// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package namealloc generates and reserves unique semantic names for new
// registry discoveries, and detects gibberish names produced by the legacy
// placeholder scheme (dsc_<hex>, Novel<N>) so the same detector gates both
// prompt acceptance and name-backfill (spec §9 "Gibberish detectors").
package namealloc

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// Store is the name reserve + registry-name uniqueness check the allocator
// needs from the registry store. Implementations must make ReserveName
// atomic (first-writer-wins) per spec §5.
type Store interface {
	NameTaken(ctx context.Context, name string) (bool, error)
	ReserveName(ctx context.Context, name string) error
	BlendNameTaken(ctx context.Context, name string) (bool, error)
}

// Allocator draws names from the combination/fallback vocabularies and
// reserves them against Store.
type Allocator struct {
	store Store
	rng   *rand.Rand
}

// New constructs an Allocator. rngSeed seeds the pseudorandom combination
// draw; callers wanting process-wide randomness should pass a seed derived
// from crypto/rand or time, but the generator itself is deterministic given
// a seed (useful for tests).
func New(store Store, rngSeed int64) *Allocator {
	return &Allocator{store: store, rng: rand.New(rand.NewSource(rngSeed))}
}

const maxNameAttempts = 50

// gibberishRe matches the legacy placeholder naming scheme: dsc_<hex> or
// Novel<digits>.
var gibberishRe = regexp.MustCompile(`^(dsc_[0-9a-fA-F]+|Novel\d+)$`)

const gibberishLengthThreshold = 24

// IsGibberish reports whether name matches the legacy placeholder scheme, or
// exceeds the length threshold while containing no recognizable vocabulary
// segment. This is the single source of truth gating both prompt acceptance
// (strict mode, interpretations) and name-backfill eligibility.
func IsGibberish(name string) bool {
	if gibberishRe.MatchString(name) {
		return true
	}
	if len(name) <= gibberishLengthThreshold {
		return false
	}
	lower := strings.ToLower(name)
	for _, s := range starts {
		if strings.Contains(lower, strings.ToLower(s)) {
			return false
		}
	}
	for _, e := range ends {
		if strings.Contains(lower, strings.ToLower(e)) {
			return false
		}
	}
	for _, w := range vocabulary {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// ReserveUniqueName draws a semantic word, combining a starts entry and an
// ends entry (rejecting combinations whose boundary letters collide), falling
// back to the curated vocabulary, and finally to Novel<5-digit> on exhaustion.
// The name is reserved atomically with return.
func (a *Allocator) ReserveUniqueName(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := a.drawCombination()
		taken, err := a.isTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			if err := a.store.ReserveName(ctx, candidate); err != nil {
				continue // collision on insert; retry per spec §5
			}
			return candidate, nil
		}
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := vocabulary[a.rng.Intn(len(vocabulary))]
		taken, err := a.isTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			if err := a.store.ReserveName(ctx, candidate); err != nil {
				continue
			}
			return candidate, nil
		}
	}

	candidate := fmt.Sprintf("Novel%05d", a.rng.Intn(100000))
	if err := a.store.ReserveName(ctx, candidate); err != nil {
		return "", fmt.Errorf("name allocator exhausted fallback: %w", err)
	}
	return candidate, nil
}

func (a *Allocator) drawCombination() string {
	start := starts[a.rng.Intn(len(starts))]
	end := ends[a.rng.Intn(len(ends))]
	if strings.HasSuffix(start, end[:1]) {
		// retry once with a different end to avoid doubled boundary letters
		end = ends[a.rng.Intn(len(ends))]
	}
	return start + strings.ToLower(end[:1]) + end[1:]
}

func (a *Allocator) isTaken(ctx context.Context, name string) (bool, error) {
	reserved, err := a.store.NameTaken(ctx, name)
	if err != nil {
		return false, err
	}
	return reserved, nil
}

// ResolveUniqueBlendName disambiguates base against the name reserve and the
// blend table: numeric suffixes 2..100 first, then a random 4-digit suffix.
func (a *Allocator) ResolveUniqueBlendName(ctx context.Context, base string) (string, error) {
	taken, err := a.blendOrReserved(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for n := 2; n <= 100; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		taken, err := a.blendOrReserved(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s%04d", base, a.rng.Intn(10000)), nil
}

func (a *Allocator) blendOrReserved(ctx context.Context, name string) (bool, error) {
	reserved, err := a.store.NameTaken(ctx, name)
	if err != nil {
		return false, err
	}
	if reserved {
		return true, nil
	}
	return a.store.BlendNameTaken(ctx, name)
}

// RGBToSemanticColorName deterministically maps (r,g,b) to one of fifteen
// hint families, then returns the first unused vocabulary word in that
// family. seen tracks words already used in this call's scope (e.g. the
// current request) to avoid intra-batch collisions; it is not a substitute
// for the Store uniqueness check which callers must still perform before
// insert.
func RGBToSemanticColorName(r, g, b int, seen map[string]bool) string {
	family := classifyRGB(r, g, b)
	for _, word := range rgbHintFamilies[family] {
		if !seen[word] {
			return word
		}
	}
	// every family word used: invented word seeded by |r*31 + g*37 + b*41|
	seed := r*31 + g*37 + b*41
	if seed < 0 {
		seed = -seed
	}
	return fmt.Sprintf("hue%d", seed%100000)
}

// ReserveSemanticColorName names a freshly discovered static color through
// the RGB-hint family mapping, reserving the first word in the matched
// family the store hasn't already taken. When the whole family is taken it
// falls back to the general combination allocator rather than inventing a
// "hue<N>" placeholder against the live store.
func (a *Allocator) ReserveSemanticColorName(ctx context.Context, r, g, b int) (string, error) {
	family := rgbHintFamilies[classifyRGB(r, g, b)]
	seen := make(map[string]bool, len(family))
	for range family {
		candidate := RGBToSemanticColorName(r, g, b, seen)
		seen[candidate] = true
		taken, err := a.isTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			if err := a.store.ReserveName(ctx, candidate); err != nil {
				continue // collision on insert; try the next family word
			}
			return candidate, nil
		}
	}
	return a.ReserveUniqueName(ctx)
}

func classifyRGB(r, g, b int) string {
	lum := (r + g + b) / 3
	switch {
	case lum < 40:
		return "midnight"
	case lum < 70:
		return "shadow"
	case r > g && r > b && r > 150:
		return "ember"
	case r > 140 && g > 90 && b < 90:
		return "sunset"
	case r > 120 && g < 90 && b < 90:
		return "rust"
	case g > r && g > b && g > 130:
		return "moss"
	case g > r && g > b:
		return "forest"
	case g > 100 && r > 90 && b < 80:
		return "olive"
	case b > r && b > g && g > 100:
		return "teal"
	case b > r && r > g:
		return "violet"
	case b > r && b > g:
		return "ocean"
	case lum > 190 && abs(r-g) < 15 && abs(g-b) < 15:
		return "neutral"
	case abs(r-g) < 10 && abs(g-b) < 10:
		return "slate"
	default:
		return "mist"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
