// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"net/http"

	"github.com/chiku524/motionloop/internal/models"
)

// knowledgeForCreationLimit bounds most per-category listings in the
// creation-side view; interpretation_prompts has its own 500 cap (spec §4.D).
const knowledgeForCreationLimit = 500

// GetKnowledgeForCreation handles GET /knowledge/for-creation, the view the
// renderer worker consumes when building a new procedural video.
func (h *Handler) GetKnowledgeForCreation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	colors, err := h.db.ListBlended(ctx, string(models.DomainColor), knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learned colors", err)
		return
	}
	learnedColors := make(map[string]*models.BlendedRow, len(colors))
	for _, c := range colors {
		learnedColors[c.ProfileKey] = c
	}

	motion, err := h.db.ListBlended(ctx, string(models.DomainMotion), knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learned motion", err)
		return
	}

	audio, err := h.db.ListBlended(ctx, string(models.DomainAudioSemantic), knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learned audio", err)
		return
	}

	// gradient/camera are modeled as a single learned_* table apiece, so the
	// "union of blend rows and per-domain table" collapses to one listing -
	// the table's profile_key uniqueness already de-duplicates it.
	gradient, err := h.db.ListBlended(ctx, string(models.DomainGradient), knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learned gradients", err)
		return
	}
	camera, err := h.db.ListBlended(ctx, string(models.DomainCamera), knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learned camera motions", err)
		return
	}

	prompts, err := h.db.ListInterpretationPrompts(ctx, 500)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list interpretation prompts", err)
		return
	}

	staticColors, err := h.db.ListStaticColors(ctx, knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list static colors", err)
		return
	}
	staticSound, err := h.db.ListStaticSound(ctx, knowledgeForCreationLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list static sound", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"learned_colors":         learnedColors,
		"learned_motion":         motion,
		"learned_audio":          audio,
		"learned_gradient":       gradient,
		"learned_camera":         camera,
		"origin_gradient":        models.OriginGradient,
		"origin_camera":          models.OriginCamera,
		"origin_motion":          models.OriginMotion,
		"interpretation_prompts": prompts,
		"static_colors":          staticColors,
		"static_sound":           staticSound,
	})
}
