// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"net/http"
	"strings"

	"github.com/chiku524/motionloop/internal/models"
)

// CreateLearningRun handles POST /learning.
func (h *Handler) CreateLearningRun(w http.ResponseWriter, r *http.Request) {
	var req models.LearningRunRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(w, http.StatusBadRequest, "prompt is required", nil)
		return
	}

	run := &models.LearningRun{Prompt: req.Prompt, Spec: req.Spec, Analysis: req.Analysis}
	if req.JobID != "" {
		run.JobID = &req.JobID
	}

	id, err := h.db.InsertLearningRun(r.Context(), run)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record learning run", err)
		return
	}
	run.ID = id
	respondJSON(w, http.StatusCreated, run)
}

// ListLearningRuns handles GET /learning/runs?limit=N (N<=500).
func (h *Handler) ListLearningRuns(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", 100)
	if limit > 500 {
		limit = 500
	}
	runs, err := h.db.ListLearningRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list learning runs", err)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !models.ValidEventType(req.EventType) {
		respondError(w, http.StatusBadRequest, "invalid event_type", nil)
		return
	}

	ev := &models.Event{EventType: models.EventType(req.EventType), Payload: req.Payload}
	if req.JobID != "" {
		ev.JobID = &req.JobID
	}
	id, err := h.db.InsertEvent(r.Context(), ev)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record event", err)
		return
	}
	ev.ID = id
	respondJSON(w, http.StatusCreated, ev)
}

// ListEvents handles GET /events?type=…&limit=N (N<=1000).
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("type")
	if eventType != "" && !models.ValidEventType(eventType) {
		respondError(w, http.StatusBadRequest, "invalid event type filter", nil)
		return
	}
	limit := getIntParam(r, "limit", 100)
	if limit > 1000 {
		limit = 1000
	}

	events, err := h.db.ListEvents(r.Context(), eventType, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events", err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
