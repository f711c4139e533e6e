// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"net/http"
	"time"

	"github.com/chiku524/motionloop/internal/models"
)

// Health returns the fixed `{ok:true, service:"motion-productions"}` shape
// spec §6 mandates for both GET /health and GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthResponse{OK: true, Service: "motion-productions"})
}

// HealthLive is a Kubernetes-style liveness probe: 200 as long as the
// process is serving, regardless of dependency health.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is a Kubernetes-style readiness probe: 200 only once the
// registry store answers a ping, 503 otherwise. When ready, it also reports
// the applied schema version and primary-table record counts, so an operator
// probing readiness during a rollout can see the store actually has data
// without a separate diagnostics call.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.db != nil && h.db.Ping(r.Context()) == nil

	body := map[string]interface{}{
		"ready":  ready,
		"uptime": time.Since(h.startTime).Seconds(),
	}
	if ready {
		if version, err := h.db.GetCurrentSchemaVersion(); err == nil {
			body["schema_version"] = version
		}
		if jobs, learningRuns, err := h.db.GetRecordCounts(r.Context()); err == nil {
			body["job_count"] = jobs
			body["learning_run_count"] = learningRuns
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, body)
}
