// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package models

// OriginGradient, OriginCamera and OriginMotion are the fixed canonical
// vocabularies the registries view and the creation-side view must always
// report with count 0 when undiscovered (spec §4.D invariant "GET /registries
// always includes every origin/canonical entry").
var (
	OriginGradient = []string{
		"linear", "radial", "conic", "diagonal", "vertical", "horizontal",
	}
	OriginCamera = []string{
		"static", "pan", "tilt", "zoom_in", "zoom_out", "dolly", "orbit", "handheld",
	}
	OriginMotion = []string{
		"still", "drift", "pulse", "sweep", "shake", "bounce", "spin", "flow",
	}
)
