// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chiku524/motionloop/internal/models"
	"github.com/chiku524/motionloop/internal/namealloc"
)

const maxInterpretationBatch = 50

// QueueInterpretation handles POST /interpret/queue.
func (h *Handler) QueueInterpretation(w http.ResponseWriter, r *http.Request) {
	var req models.InterpretQueueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required", nil)
		return
	}
	source := models.InterpretationSource(req.Source)
	if source == "" {
		source = models.SourceWeb
	}

	it := &models.Interpretation{ID: uuid.NewString(), Prompt: req.Prompt, Source: source}
	if err := h.db.InsertInterpretation(r.Context(), it); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to queue interpretation", err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// GetQueuedInterpretation handles GET /interpret/queue, returning the oldest
// pending prompt with web-sourced prompts prioritized ahead of others.
func (h *Handler) GetQueuedInterpretation(w http.ResponseWriter, r *http.Request) {
	it, err := h.db.NextPendingInterpretationAny(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch interpretation queue", err)
		return
	}
	if it == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// PatchInterpretation handles PATCH /interpret/:id.
func (h *Handler) PatchInterpretation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.InterpretPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		respondError(w, http.StatusBadRequest, "instruction is required", nil)
		return
	}
	if err := h.db.PatchInterpretation(r.Context(), id, req.Instruction); err != nil {
		respondError(w, http.StatusNotFound, "interpretation not found or already done", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// CreateInterpretation handles POST /interpretations — a single already-done
// interpretation, with gibberish-prompt rejection unless source=="loop".
func (h *Handler) CreateInterpretation(w http.ResponseWriter, r *http.Request) {
	var req models.InterpretationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.writeDoneInterpretation(r, req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"ok": true})
}

// CreateInterpretationBatch handles POST /interpretations/batch (<=50
// items). Gibberish prompts are silently skipped rather than rejecting the
// whole batch (spec §7 "Gibberish prompt" row).
func (h *Handler) CreateInterpretationBatch(w http.ResponseWriter, r *http.Request) {
	var items []models.InterpretationRequest
	if err := decodeJSON(r, &items); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(items) > maxInterpretationBatch {
		items = items[:maxInterpretationBatch]
	}

	written := 0
	for _, item := range items {
		if err := h.writeDoneInterpretation(r, item); err != nil {
			continue // batch items: skip gibberish silently, per spec §7
		}
		written++
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"written": written})
}

func (h *Handler) writeDoneInterpretation(r *http.Request, req models.InterpretationRequest) error {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return errEmptyPrompt
	}
	source := models.InterpretationSource(req.Source)
	if source != models.SourceLoop && namealloc.IsGibberish(prompt) {
		return errGibberishPrompt
	}

	it := &models.Interpretation{
		ID:     uuid.NewString(),
		Prompt: prompt,
		Source: source,
		Status: models.InterpretationDone,
	}
	if req.Instruction != "" {
		it.Instruction = &req.Instruction
	}
	return h.db.InsertInterpretation(r.Context(), it)
}
