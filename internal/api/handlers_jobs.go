// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chiku524/motionloop/internal/blobstore"
	"github.com/chiku524/motionloop/internal/metrics"
	"github.com/chiku524/motionloop/internal/models"
)

const maxUploadBytes = 500 << 20 // generous ceiling; the renderer is the only uploader

// CreateJob handles POST /jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required", nil)
		return
	}
	if len(req.Prompt) > 500 {
		req.Prompt = req.Prompt[:500]
	}
	if !models.ValidWorkflowType(req.WorkflowType) {
		respondError(w, http.StatusBadRequest, "invalid workflow_type", nil)
		return
	}

	job := &models.Job{
		ID:              uuid.NewString(),
		Prompt:          req.Prompt,
		DurationSeconds: req.DurationSeconds,
		Status:          models.JobPending,
		WorkflowType:    models.WorkflowType(req.WorkflowType),
	}
	if err := h.db.InsertJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create job", err)
		return
	}
	metrics.JobsTotal.WithLabelValues(string(models.JobPending)).Inc()

	h.publishEvent(r.Context(), models.EventPromptSubmitted, &job.ID, "")
	respondJSON(w, http.StatusCreated, job)
}

// ListJobs handles GET /jobs?status=pending|completed&limit=N.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := getIntParam(r, "limit", 100)
	if limit > 100 {
		limit = 100
	}

	var jobs []*models.Job
	var err error
	switch status {
	case "", string(models.JobPending):
		jobs, err = h.db.ListPendingJobs(r.Context(), limit)
	case string(models.JobCompleted):
		jobs, err = h.db.ListRecentCompletedJobs(r.Context(), limit)
	default:
		respondError(w, http.StatusBadRequest, "invalid status filter", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list jobs", err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

// GetJob handles GET /jobs/:id. Attaches download_url when the job is
// completed and its blob resolves.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.db.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "job not found", err)
		return
	}
	if job.Status == models.JobCompleted && job.R2Key != nil {
		job.DownloadURL = "/jobs/" + job.ID + "/download"
	}
	respondJSON(w, http.StatusOK, job)
}

// UploadJobVideo handles POST /jobs/:id/upload. Accepts a raw or multipart
// body, stores the blob externally, and flips the job to completed.
func (h *Handler) UploadJobVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.db.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "job not found", err)
		return
	}
	if job.Status == models.JobCompleted {
		respondError(w, http.StatusBadRequest, "job already has video", ErrJobAlreadyCompleted)
		return
	}

	body, err := uploadBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid upload", err)
		return
	}
	defer body.Close()

	key := blobstore.JobVideoKey(job.ID)
	limited := io.LimitReader(body, maxUploadBytes+1)
	counting := &countingReader{r: limited}
	if err := h.blobs.Put(r.Context(), key, counting); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store video", err)
		return
	}
	if counting.n == 0 {
		respondError(w, http.StatusBadRequest, "upload body is empty", ErrEmptyUpload)
		return
	}

	if err := h.db.CompleteJob(r.Context(), job.ID, key); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to complete job", err)
		return
	}
	metrics.JobsTotal.WithLabelValues(string(models.JobCompleted)).Inc()

	h.publishEvent(r.Context(), models.EventJobCompleted, &job.ID, "")
	job.Status = models.JobCompleted
	job.R2Key = &key
	job.DownloadURL = "/jobs/" + job.ID + "/download"
	respondJSON(w, http.StatusOK, job)
}

// uploadBody returns the raw request body, unwrapping a multipart "video"
// part when the request is multipart/form-data.
func uploadBody(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/") {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("video")
	if err != nil {
		return nil, err
	}
	return file, nil
}

// countingReader counts bytes read, used to detect an empty upload body
// after streaming it straight into the blob store.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// DownloadJobVideo handles GET /jobs/:id/download.
func (h *Handler) DownloadJobVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.db.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "job not found", err)
		return
	}
	if job.Status != models.JobCompleted || job.R2Key == nil {
		respondError(w, http.StatusNotFound, "job has no video", ErrBlobNotResolvable)
		return
	}

	blob, _, size, err := h.blobs.Get(r.Context(), *job.R2Key)
	if err != nil {
		respondError(w, http.StatusNotFound, "video not found", err)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if _, err := io.Copy(w, blob); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to stream video", err)
	}
}

// SubmitFeedback handles POST /jobs/:id/feedback.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !models.ValidRating(req.Rating) {
		respondError(w, http.StatusBadRequest, "rating must be 1 or 2", nil)
		return
	}

	if err := h.db.UpsertFeedback(r.Context(), &models.Feedback{JobID: id, Rating: req.Rating}); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save feedback", err)
		return
	}

	h.publishEvent(r.Context(), models.EventFeedback, &id, "")
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
