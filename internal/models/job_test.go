// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package models

import "testing"

func TestValidWorkflowType(t *testing.T) {
	valid := []string{"", "explorer", "exploiter", "main", "web"}
	for _, wt := range valid {
		if !ValidWorkflowType(wt) {
			t.Fatalf("expected %q to be a valid workflow type", wt)
		}
	}
	if ValidWorkflowType("scheduler") {
		t.Fatalf("expected scheduler to be rejected as an unknown workflow type")
	}
}

func TestValidEventType(t *testing.T) {
	valid := []string{
		"prompt_submitted", "job_completed", "video_played",
		"video_abandoned", "download_clicked", "error", "feedback",
	}
	for _, et := range valid {
		if !ValidEventType(et) {
			t.Fatalf("expected %q to be a valid event type", et)
		}
	}
	if ValidEventType("video_liked") {
		t.Fatalf("expected video_liked to be rejected as an unknown event type")
	}
}

func TestValidRating(t *testing.T) {
	if !ValidRating(1) || !ValidRating(2) {
		t.Fatalf("expected 1 and 2 to be valid ratings")
	}
	for _, r := range []int{0, 3, -1} {
		if ValidRating(r) {
			t.Fatalf("expected %d to be rejected as an invalid rating", r)
		}
	}
}
